package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"strings"
)

// AvatarHandler lists the avatar images players and admins can pick from
type AvatarHandler struct {
	dir string
}

// NewAvatarHandler creates a handler for the avatars in dir
func NewAvatarHandler(dir string) *AvatarHandler {
	return &AvatarHandler{dir: dir}
}

// Avatar is a selectable avatar image
type Avatar struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (h *AvatarHandler) list() ([]Avatar, error) {
	entries, err := os.ReadDir(h.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Avatar{}, nil
	}
	if err != nil {
		return nil, err
	}

	avatars := []Avatar{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".svg") {
			continue
		}
		avatars = append(avatars, Avatar{
			Name: strings.TrimSuffix(e.Name(), ".svg"),
			Path: "/avatars/" + e.Name(),
		})
	}
	sort.Slice(avatars, func(i, j int) bool { return avatars[i].Name < avatars[j].Name })
	return avatars, nil
}

// ListAvatars returns every .svg file in the avatars directory
func (h *AvatarHandler) ListAvatars(w http.ResponseWriter, r *http.Request) {
	avatars, err := h.list()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list avatars", "Error reading avatars directory", err)
		return
	}
	respondOK(w, avatars)
}

// Files serves the avatar images themselves
func (h *AvatarHandler) Files() http.Handler {
	return http.StripPrefix("/avatars/", http.FileServer(http.Dir(h.dir)))
}
