package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"genstudio/internal/request"
	"genstudio/types"
)

var ErrRefreshFailed = errors.New("history refresh failed")

// Source is the remote history listing.
type Source interface {
	History(ctx context.Context, page, perPage int) (types.HistoryResponse, error)
	VideoHistory(ctx context.Context, page, perPage int) (types.HistoryResponse, error)
}

type Meta struct {
	Total       int
	Pages       int
	CurrentPage int
}

type listing struct {
	items []types.HistoryItem
	meta  Meta
}

// Cache mirrors the first page of the remote image and video history.
type Cache struct {
	src     Source
	perPage int

	mu    sync.RWMutex
	lists map[request.Mode]listing
}

func NewCache(src Source, perPage int) *Cache {
	if perPage <= 0 {
		perPage = 20
	}
	return &Cache{
		src:     src,
		perPage: perPage,
		lists:   map[request.Mode]listing{},
	}
}

// Refresh issues one read for mode and replaces that list wholesale. On any
// failure the list is replaced with an empty one and the error returned.
func (c *Cache) Refresh(ctx context.Context, mode request.Mode) ([]types.HistoryItem, error) {
	var (
		resp types.HistoryResponse
		err  error
	)
	switch mode {
	case request.ModeVideo:
		resp, err = c.src.VideoHistory(ctx, 1, c.perPage)
	case request.ModeImage:
		resp, err = c.src.History(ctx, 1, c.perPage)
	default:
		return nil, fmt.Errorf("%w: %q", request.ErrUnknownMode, mode)
	}

	if err == nil && resp.Status != types.StatusSuccess {
		msg := resp.Message
		if msg == "" {
			msg = "unexpected status " + resp.Status
		}
		err = fmt.Errorf("%w: %s", ErrRefreshFailed, msg)
	}
	if err != nil {
		c.store(mode, listing{})
		return nil, err
	}

	items := resp.Images
	if mode == request.ModeVideo {
		items = resp.Videos
	}
	l := listing{
		items: append([]types.HistoryItem(nil), items...),
		meta:  Meta{Total: resp.Total, Pages: resp.Pages, CurrentPage: resp.CurrentPage},
	}
	c.store(mode, l)
	return c.Items(mode), nil
}

func (c *Cache) store(mode request.Mode, l listing) {
	c.mu.Lock()
	c.lists[mode] = l
	c.mu.Unlock()
}

// Items returns a copy of the cached list for mode.
func (c *Cache) Items(mode request.Mode) []types.HistoryItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.HistoryItem(nil), c.lists[mode].items...)
}

func (c *Cache) Meta(mode request.Mode) Meta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lists[mode].meta
}

func (c *Cache) Find(mode request.Mode, id int64) (types.HistoryItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.lists[mode].items {
		if it.ID == id {
			return it, true
		}
	}
	return types.HistoryItem{}, false
}
