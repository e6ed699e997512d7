// Package folders saves recipes into the user's named folders.
package folders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"meal-planner/internal/apiclient"
	"meal-planner/internal/logging"
)

const foldersPath = "/api/folders"

// ErrAlreadyInFolder is returned when the recipe is already in the folder.
var ErrAlreadyInFolder = errors.New("recipe is already in this folder")

// FolderNotFoundError is returned when the folder is missing even after
// the folder list was refreshed.
type FolderNotFoundError struct {
	Name string
}

func (e *FolderNotFoundError) Error() string {
	return fmt.Sprintf("folder %q not found", e.Name)
}

// Folder is a user folder. IDs are kept as strings whatever the backend sends.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Saver resolves folder names against a cached folder list and adds recipes.
type Saver struct {
	client *apiclient.Client
	logger *zap.Logger

	mu      sync.Mutex
	folders []Folder
}

// NewSaver creates a Saver with an empty cache.
func NewSaver(client *apiclient.Client, logger *zap.Logger) *Saver {
	return &Saver{client: client, logger: logging.OrNop(logger)}
}

// SetCached replaces the cached folder list, e.g. with one fetched for display.
func (s *Saver) SetCached(folders []Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = append([]Folder(nil), folders...)
}

// SaveRecipe adds recipeID to the folder called folderName.
//
// The lookup is lookupLocal, then refreshAndRetryOnce, then fail: the
// folder list is refreshed at most once per call.
func (s *Saver) SaveRecipe(ctx context.Context, recipeID, folderName string) error {
	folder, ok := s.lookupLocal(folderName)
	if !ok {
		var err error
		folder, ok, err = s.refreshAndRetryOnce(ctx, folderName)
		if err != nil {
			return err
		}
		if !ok {
			return &FolderNotFoundError{Name: folderName}
		}
	}

	members, err := s.FolderRecipes(ctx, folder.ID)
	if err != nil {
		return err
	}
	for _, id := range members {
		if id == recipeID {
			return ErrAlreadyInFolder
		}
	}

	body := map[string]string{"recipe_id": recipeID}
	if err := s.client.Post(ctx, recipesPath(folder.ID), body, nil); err != nil {
		return fmt.Errorf("failed to add recipe %s to folder %q: %w", recipeID, folder.Name, err)
	}
	s.logger.Info("recipe saved to folder",
		zap.String("recipe_id", recipeID),
		zap.String("folder_id", folder.ID),
		zap.String("folder", folder.Name),
	)
	return nil
}

func (s *Saver) lookupLocal(name string) (Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findFolder(s.folders, name)
}

func (s *Saver) refreshAndRetryOnce(ctx context.Context, name string) (Folder, bool, error) {
	s.logger.Debug("folder not cached, refreshing list", zap.String("folder", name))
	folders, err := s.List(ctx)
	if err != nil {
		return Folder{}, false, err
	}
	f, ok := findFolder(folders, name)
	return f, ok, nil
}

// List fetches the folder list and refreshes the cache.
func (s *Saver) List(ctx context.Context) ([]Folder, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, foldersPath, &raw); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	items, err := decodeList(raw, "folders")
	if err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}
	folders := make([]Folder, 0, len(items))
	for _, it := range items {
		name, _ := it["name"].(string)
		folders = append(folders, Folder{ID: idString(it["id"]), Name: name})
	}

	s.SetCached(folders)
	return folders, nil
}

// FolderRecipes returns the ids of the recipes in a folder.
func (s *Saver) FolderRecipes(ctx context.Context, folderID string) ([]string, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, recipesPath(folderID), &raw); err != nil {
		return nil, fmt.Errorf("failed to list recipes of folder %s: %w", folderID, err)
	}

	items, err := decodeList(raw, "recipes")
	if err != nil {
		return nil, fmt.Errorf("failed to decode folder recipes: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		id := idString(it["recipe_id"])
		if id == "" {
			id = idString(it["id"])
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func recipesPath(folderID string) string {
	return foldersPath + "/" + url.PathEscape(folderID) + "/recipes"
}

func findFolder(folders []Folder, name string) (Folder, bool) {
	name = strings.TrimSpace(name)
	for _, f := range folders {
		if strings.EqualFold(strings.TrimSpace(f.Name), name) {
			return f, true
		}
	}
	return Folder{}, false
}

// decodeList accepts a bare array or an object wrapping it under key.
func decodeList(raw json.RawMessage, key string) ([]map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	inner, ok := env[key]
	if !ok {
		return nil, nil
	}
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func idString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
