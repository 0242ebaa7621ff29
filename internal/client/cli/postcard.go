package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"postcard-backend/internal/client/api"
	"postcard-backend/internal/client/markers"
)

// mapViewport is the headless map rendered by the nearby command
var mapViewport = markers.WebMercator{Zoom: 15, Width: 800, Height: 600}

// CreatePostcard sends a new postcard from the prompted position
func (a *App) CreatePostcard(ctx context.Context) error {
	imageURL, err := promptLine(a.reader, "Enter image URL (use 'upload' first)", os.Stdout)
	if err != nil {
		return err
	}
	text, err := promptLine(a.reader, "Enter message", os.Stdout)
	if err != nil {
		return err
	}
	lat, err := promptFloat(a.reader, "Enter latitude", os.Stdout)
	if err != nil {
		return err
	}
	lon, err := promptFloat(a.reader, "Enter longitude", os.Stdout)
	if err != nil {
		return err
	}

	resp, err := a.api.CreatePostcard(ctx, api.CreatePostcardRequest{
		ImageURL: imageURL,
		Text:     text,
		Lat:      lat,
		Lon:      lon,
	})
	if err != nil {
		return err
	}
	fmt.Println("絵葉書を送りました。 id:", resp.PostcardID)
	return nil
}

// MyPostcards lists the user's own postcards
func (a *App) MyPostcards(ctx context.Context) error {
	postcards, err := a.api.GetMyPostcards(ctx)
	if err != nil {
		return err
	}
	if len(postcards) == 0 {
		fmt.Println("絵葉書はまだありません。")
		return nil
	}
	for _, p := range postcards {
		fmt.Printf("%s  [%s]  %s\n", p.ID, p.Status, p.Text)
	}
	return nil
}

// Nearby fetches postcards around the prompted position and renders
// them as map markers.
func (a *App) Nearby(ctx context.Context) error {
	lat, err := promptFloat(a.reader, "Enter latitude", os.Stdout)
	if err != nil {
		return err
	}
	lon, err := promptFloat(a.reader, "Enter longitude", os.Stdout)
	if err != nil {
		return err
	}

	nearby, err := a.api.GetNearby(ctx, lat, lon, 0)
	if err != nil {
		return err
	}
	my, err := a.api.GetMyPostcards(ctx)
	if err != nil {
		return err
	}

	viewport := mapViewport
	viewport.CenterLat, viewport.CenterLon = lat, lon
	state := markers.Build(viewport, lat, lon, my, nearby)

	fmt.Printf("you: (%.1f, %.1f)\n", state.UserPos.X, state.UserPos.Y)
	for _, m := range state.Postcards {
		owner := " "
		if m.IsOwn {
			owner = "*"
		}
		fmt.Printf("%s %s  (%.1f, %.1f)\n", owner, m.ID, m.X, m.Y)
	}
	return nil
}

// ShowPostcard prints one postcard with its travel path
func (a *App) ShowPostcard(ctx context.Context, postcardID string) error {
	detail, err := a.api.GetDetail(ctx, postcardID)
	if err != nil {
		return err
	}
	fmt.Println(detail.PostcardID)
	fmt.Println("  text:", detail.Text)
	fmt.Println("  image:", detail.ImageURL)
	fmt.Println("  author:", detail.AuthorID)
	fmt.Println("  likes:", detail.LikesCount)
	fmt.Printf("  position: (%.5f, %.5f)\n",
		detail.CurrentPosition.Lat.Float64(), detail.CurrentPosition.Lon.Float64())
	for _, p := range detail.Path {
		fmt.Printf("  %s  %s\n", p.ArrivalTime.Format("2006-01-02 15:04"), p.Prefecture)
	}
	return nil
}

// Collect adds a postcard to the collection
func (a *App) Collect(ctx context.Context, postcardID string) error {
	if err := a.api.Collect(ctx, postcardID); err != nil {
		return err
	}
	fmt.Println("絵葉書をコレクションに追加しました。")
	return nil
}

// Like likes a collected postcard
func (a *App) Like(ctx context.Context, postcardID string) error {
	if err := a.api.Like(ctx, postcardID); err != nil {
		return err
	}
	fmt.Println("いいね！が追加されました。")
	return nil
}

// Collection lists collected postcards
func (a *App) Collection(ctx context.Context) error {
	items, err := a.api.GetCollection(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("コレクションは空です。")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  ♥%d  %s\n", item.PostcardID, item.LikesCount, item.Text)
	}
	return nil
}

// Upload pushes a local image through the pre-signed upload flow and
// prints the resulting public URL.
func (a *App) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	resp, err := a.api.RequestUpload(ctx, contentType)
	if err != nil {
		return err
	}
	if err := a.api.UploadImage(ctx, resp.UploadURL, contentType, f); err != nil {
		return err
	}
	fmt.Println("uploaded:", resp.ImageURL)
	return nil
}
