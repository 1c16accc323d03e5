// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gridcast/gridcast/collector"
)

// folderHost plays the design tool: every PNG in directory is a
// selected frame named after the file, and rasterizing one reads the
// file back.
type folderHost struct {
	directory string
	only      map[string]bool
	logger    *slog.Logger
}

func newFolderHost(directory string, only []string, logger *slog.Logger) *folderHost {
	host := &folderHost{directory: directory, logger: logger}
	if len(only) > 0 {
		host.only = make(map[string]bool, len(only))
		for _, name := range only {
			host.only[name] = true
		}
	}
	return host
}

func (h *folderHost) Selection(ctx context.Context) ([]collector.Node, error) {
	entries, err := os.ReadDir(h.directory)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", h.directory, err)
	}
	var nodes []collector.Node
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if h.only != nil && !h.only[name] {
			continue
		}
		nodes = append(nodes, collector.Node{Name: name, IsFrame: true})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes, nil
}

func (h *folderHost) Rasterize(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(h.directory)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", h.directory, err)
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if strings.EqualFold(ext, ".png") && strings.TrimSuffix(entry.Name(), ext) == name {
			return os.ReadFile(filepath.Join(h.directory, entry.Name()))
		}
	}
	return nil, fmt.Errorf("no PNG for frame %q in %s", name, h.directory)
}

func (h *folderHost) OpenURL(ctx context.Context, link string) error {
	h.logger.Info("open link", "url", link)
	return nil
}
