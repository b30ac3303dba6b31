package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/defkit/internal/def"
	"github.com/danmuck/defkit/internal/intern"
	"github.com/danmuck/defkit/internal/observability"
	"github.com/danmuck/defkit/internal/schemafile"
	"github.com/danmuck/defkit/internal/symtab"
)

func main() {
	configPath := flag.String("config", "", "optional defctl config file")
	sortFields := flag.Bool("sort", true, "reorder fields into the required-first layout")
	flag.Parse()

	observability.InitLogger("defctl")

	cfg := defaultToolConfig()
	if *configPath != "" {
		loaded, err := loadToolConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load defctl config")
		}
		cfg = loaded
		log.Info().Str("path", *configPath).Msg("loaded defctl config")
	}
	observability.SetLevel(cfg.LogLevel)

	schemas := append(cfg.Schemas, flag.Args()...)
	if len(schemas) == 0 {
		fmt.Fprintln(os.Stderr, "defctl: no schema files given")
		os.Exit(2)
	}
	sort := cfg.SortFields && *sortFields

	pool := intern.NewPool()
	registry := symtab.New(pool)
	for _, path := range schemas {
		set, err := schemafile.Load(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to load schema file")
		}
		if err := registry.Add(set, symtab.Options{Sort: sort}); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to build schema set")
		}
		log.Info().Str("path", path).Msg("schema file built")
	}

	report(registry)
	registry.Release()
}

func report(registry *symtab.Registry) {
	for _, name := range registry.Names() {
		d, ok := registry.Lookup(name)
		if !ok {
			continue
		}
		switch d := d.(type) {
		case *def.MsgDef:
			fmt.Printf("message %s (%d fields, %d required, instance %dB)\n",
				d.FullName(), d.NumFields(), d.NumRequiredFields(), d.InstanceSize())
			for i := 0; i < d.NumFields(); i++ {
				f := d.Field(i)
				line := fmt.Sprintf("  %d: %s %s %s", f.Number(), f.Label(), f.Type(), f.Name())
				if f.HasTarget() {
					line += " -> " + f.Target().FullName()
				}
				fmt.Printf("%s (offset %d, index %d)\n", line, f.ByteOffset(), f.FieldIndex())
			}
		case *def.EnumDef:
			fmt.Printf("enum %s (%d values)\n", d.FullName(), d.NumValues())
			d.Values(func(name string, value int32) bool {
				fmt.Printf("  %s = %d\n", name, value)
				return true
			})
		}
		d.Unref()
	}
}
