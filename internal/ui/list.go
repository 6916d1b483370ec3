package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"photosync/internal/models"
)

var _ list.Item = albumItem{}

// albumItem wraps [models.Album] to implement [list.Item].
type albumItem struct {
	album models.Album
}

func (i albumItem) FilterValue() string { return i.album.Title }
func (i albumItem) Title() string       { return i.album.Title }
func (i albumItem) Description() string {
	if i.album.ItemCount == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", i.album.ItemCount)
}
