// Package config loads env-tagged structs from the process environment.
//
// A .env file in the working directory (or the file named by ENV_FILE) is
// read once before the first load; real environment variables win over
// values from the file.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrNilPointer    = errors.New("nil pointer provided to config loader")
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	cache      sync.Map // reflect.Type -> *entry
	dotenvOnce sync.Once
)

func loadDotenv() {
	dotenvOnce.Do(func() {
		file := os.Getenv("ENV_FILE")
		if file == "" {
			file = ".env"
		}
		// A missing file is fine: production reads the real environment.
		_ = godotenv.Load(file)
	})
}

// Load parses the environment into v. Each config type is parsed once per
// process; later calls get a copy of the cached value, so packages can load
// their own Config without re-reading the environment.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	key := reflect.TypeFor[T]()
	e, _ := cache.LoadOrStore(key, &entry{})
	ent := e.(*entry)
	ent.once.Do(func() {
		var cfg T
		ent.err = Parse(&cfg)
		ent.value = cfg
	})
	if ent.err != nil {
		// Let a later call retry after the environment is fixed.
		cache.CompareAndDelete(key, ent)
		return ent.err
	}

	*v = ent.value.(T)
	return nil
}

// Parse reads the environment into v without caching. Tests use it together
// with t.Setenv.
func Parse[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotenv()
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Use it only in main.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
