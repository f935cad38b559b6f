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

// Program canonstore manipulates the contents of a content-addressed
// [canon.Store] from the command line.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/creachadair/canon"
	"github.com/creachadair/canon/cmd/canonstore/config"
	"github.com/creachadair/command"
)

var (
	configPath = "$HOME/.config/canonstore/config.yml"
	storeAddr  string
)

func main() {
	root := &command.C{
		Name: filepath.Base(os.Args[0]),
		Usage: `[options] command [arguments]
help [command]`,
		Help: `Manipulate the contents of a canon store.

Store addresses:

  mem                     an in-memory store (data does not persist)
  file:<dir>              a filesystem store rooted at <dir>
  cache:<bytes>@<addr>    an LRU cache in front of the store named by <addr>
  wb:<bufdir>@<addr>      a write-behind buffer forwarding to <addr>

The CANON_STORE environment variable is read to choose a default store
address; otherwise -store or the store-address setting of the configuration
file must be set.
`,

		SetFlags: func(env *command.Env, fs *flag.FlagSet) {
			if cf, ok := os.LookupEnv("CANONSTORE_CONFIG"); ok && cf != "" {
				configPath = cf
			}
			fs.StringVar(&configPath, "config", configPath, "Configuration file path")
			fs.StringVar(&storeAddr, "store", os.Getenv("CANON_STORE"), "Store address (overrides config)")
		},

		Init: func(env *command.Env) error {
			cfg, err := config.Load(os.ExpandEnv(configPath))
			if err != nil {
				return err
			}
			if storeAddr != "" {
				cfg.StoreAddress = storeAddr
			}
			cfg.Context = context.Background()
			config.ExpandString(&cfg.StoreAddress)
			env.Config = cfg
			return nil
		},

		Commands: []*command.C{
			{
				Name:  "get",
				Usage: "get <id>",
				Help:  "Read a blob from the store and print it to stdout",
				Run:   runGet,
			},
			{
				Name:  "put",
				Usage: "put [<path>]",
				Help:  "Write a blob to the store from a file or stdin, printing its id",
				Run:   runPut,
			},
			{
				Name: "cas",
				Help: "Compute the id of a blob, or store a blob by its content",
				Commands: []*command.C{
					{
						Name: "key",
						Help: "Compute the id a blob from stdin would receive, without storing it",
						Run:  runCASKey,
					},
					{
						Name: "put",
						Help: "Store a blob read from stdin, printing its id",
						Run:  runPut,
					},
				},
			},
			{
				Name: "sync",
				Help: "Block until a write-behind store has flushed all buffered writes",
				Run:  runSync,
			},
			{
				Name: "stat",
				Help: "Print information about the configured store",
				Run:  runStat,
			},
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil), os.Args[1:])
}

// parseID decodes a hex-encoded identifier argument.
func parseID(s string) (canon.Id, error) {
	var id canon.Id
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if len(raw) != canon.IdLen {
		return id, fmt.Errorf("invalid id %q: want %d bytes, got %d", s, canon.IdLen, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func runGet(env *command.Env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <id>")
	}
	cfg := env.Config.(*config.Settings)
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	store, err := cfg.OpenStore(cfg.StoreAddress)
	if err != nil {
		return err
	}
	data, err := store.GetRaw(cfg.Context, id)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runPut(env *command.Env, args []string) error {
	if len(args) > 1 {
		return errors.New("usage: put [<path>]")
	}
	cfg := env.Config.(*config.Settings)

	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	store, err := cfg.OpenStore(cfg.StoreAddress)
	if err != nil {
		return err
	}
	id, err := store.PutRaw(cfg.Context, data)
	if err != nil {
		return err
	}
	fmt.Println(id.String())
	return nil
}

func runCASKey(env *command.Env, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: cas key")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	id := canon.HashBytes(data)
	fmt.Println(id.String())
	return nil
}

// syncer is implemented by store wrappers that buffer writes and need an
// explicit drain operation (currently [wbstore.Store]).
type syncer interface {
	Sync(ctx context.Context) error
}

func runSync(env *command.Env, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: sync")
	}
	cfg := env.Config.(*config.Settings)
	store, err := cfg.OpenStore(cfg.StoreAddress)
	if err != nil {
		return err
	}
	s, ok := store.(syncer)
	if !ok {
		return fmt.Errorf("store address %q has no pending-write buffer to sync", cfg.StoreAddress)
	}
	return s.Sync(cfg.Context)
}

func runStat(env *command.Env, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: stat")
	}
	cfg := env.Config.(*config.Settings)
	fmt.Printf("store address: %s\n", cfg.StoreAddress)
	fmt.Printf("identifier width: %d bytes\n", canon.IdLen)
	return nil
}
