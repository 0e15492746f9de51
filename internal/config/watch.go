// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the write bursts editors produce on save.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads the configuration when the file changes on disk.
type Watcher struct {
	fw   *fsnotify.Watcher
	out  chan *Config
	done chan struct{}
}

// Watch starts watching the config directory. Each successful reload is
// delivered on Changes; malformed edits are skipped silently and the last
// good config stays in effect.
func Watch() (*Watcher, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if err := EnsureDir(); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: atomic saves replace the inode.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:   fw,
		out:  make(chan *Config, 1),
		done: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers reloaded configurations.
func (w *Watcher) Changes() <-chan *Config {
	return w.out
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if name != "config.toml" && name != "config.json" {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			cfg, err := Load()
			if err != nil {
				continue
			}
			select {
			case w.out <- cfg:
			default:
				// Consumer still holds an undelivered reload; replace it.
				select {
				case <-w.out:
				default:
				}
				w.out <- cfg
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}
