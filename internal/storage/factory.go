package storage

import (
	"context"
	"fmt"
	"os"

	"clipforge/internal/adapters/storage/gdrive"
	"clipforge/internal/adapters/storage/localfs"
	"clipforge/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewProvider builds the configured publishing backend. An empty provider
// means finished renders are served straight from the job directory, so the
// caller gets nil with no error.
func NewProvider(cfg config.StorageConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil

	case "localfs":
		root := cfg.LocalPath
		if root == "" {
			root = "published_clips"
		}
		return localfs.New(root), nil

	case "gdrive":
		return newGDriveProvider(cfg.GDriveFolderID)

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// Google Drive credentials stay in the environment rather than the config
// file so they never land in version control.
func newGDriveProvider(folderID string) (Provider, error) {
	ctx := context.Background()

	clientID := mustEnv("GDRIVE_CLIENT_ID")
	clientSecret := mustEnv("GDRIVE_CLIENT_SECRET")
	refreshToken := mustEnv("GDRIVE_REFRESH_TOKEN")

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: refreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return gdrive.NewClient(srv, folderID), nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
