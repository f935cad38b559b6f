// Copyright 2021 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config defines the configuration settings shared by the
// subcommands of the canonstore command-line tool.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creachadair/canon"
	"github.com/creachadair/canon/store/cachestore"
	"github.com/creachadair/canon/store/filestore"
	"github.com/creachadair/canon/store/memstore"
	"github.com/creachadair/canon/store/wbstore"
	yaml "gopkg.in/yaml.v3"
)

// Settings represents the stored configuration settings for the canonstore
// tool.
type Settings struct {
	// Context value governing the execution of the tool.
	Context context.Context `json:"-" yaml:"-"`

	// The default store address, used when -store is not given.
	StoreAddress string `json:"storeAddress" yaml:"store-address"`
}

// OpenStore parses the store address addr and constructs the corresponding
// [canon.Store]. The address grammar is:
//
//	mem                     an in-memory store (data does not persist)
//	file:<dir>              a filesystem store rooted at <dir>
//	cache:<bytes>@<addr>    an LRU cache of the given byte budget in front
//	                        of the store named by <addr>
//	wb:<bufdir>@<addr>      a write-behind buffer backed by a filestore at
//	                        <bufdir>, forwarding to the store named by <addr>
//
// Wrapper addresses nest, so "cache:1048576@wb:/tmp/buf@file:/data" is a
// cache in front of a write-behind buffer in front of a filesystem store.
func (s *Settings) OpenStore(addr string) (canon.Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("no store address (set -store or %s)", envVar)
	}
	switch {
	case addr == "mem":
		return memstore.New(), nil

	case strings.HasPrefix(addr, "file:"):
		return filestore.New(strings.TrimPrefix(addr, "file:"))

	case strings.HasPrefix(addr, "cache:"):
		rest := strings.TrimPrefix(addr, "cache:")
		sizeStr, inner, ok := strings.Cut(rest, "@")
		if !ok {
			return nil, fmt.Errorf("invalid cache address %q: missing @store", addr)
		}
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid cache size %q: %w", sizeStr, err)
		}
		base, err := s.OpenStore(inner)
		if err != nil {
			return nil, err
		}
		return cachestore.New(base, size), nil

	case strings.HasPrefix(addr, "wb:"):
		rest := strings.TrimPrefix(addr, "wb:")
		bufDir, inner, ok := strings.Cut(rest, "@")
		if !ok {
			return nil, fmt.Errorf("invalid write-behind address %q: missing @store", addr)
		}
		buf, err := filestore.New(bufDir)
		if err != nil {
			return nil, fmt.Errorf("opening write-behind buffer: %w", err)
		}
		base, err := s.OpenStore(inner)
		if err != nil {
			return nil, err
		}
		return wbstore.New(s.Context, base, buf), nil

	default:
		return nil, fmt.Errorf("unrecognized store address %q", addr)
	}
}

const envVar = "CANON_STORE"

// ExpandString calls os.ExpandEnv to expand environment variables in *s.
func ExpandString(s *string) { *s = os.ExpandEnv(*s) }

// Load reads and parses the contents of a config file from path. If the
// specified path does not exist, an empty config is returned without error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return new(Settings), nil
	} else if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := new(Settings)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}
