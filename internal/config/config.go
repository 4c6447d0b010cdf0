// Package config loads the server configuration from an HCL file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/lox/dixit/internal/deck"
	"github.com/lox/dixit/internal/fileutil"
	"github.com/lox/dixit/internal/game"
)

// CardsPath is the URL prefix under which card images are served
const CardsPath = "/static/cards"

// Config represents the complete server configuration
type Config struct {
	Server   *ServerSettings `hcl:"server,block"`
	Limits   *LimitSettings  `hcl:"limits,block"`
	CardSets []CardSet       `hcl:"card_set,block"`
}

// ServerSettings contains process-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	GameTTL       string `hcl:"game_ttl,optional"`
	SweepInterval string `hcl:"sweep_interval,optional"`
	StaticDir     string `hcl:"static_dir,optional"`
	ChatCapacity  int    `hcl:"chat_capacity,optional"`
}

// LimitSettings mirrors game.Limits. Unset values keep their defaults and -1
// means unbounded.
type LimitSettings struct {
	MinName       *int `hcl:"min_name,optional"`
	MaxName       *int `hcl:"max_name,optional"`
	MinPlayers    *int `hcl:"min_players,optional"`
	MaxPlayers    *int `hcl:"max_players,optional"`
	MinScore      *int `hcl:"min_score,optional"`
	MaxScore      *int `hcl:"max_score,optional"`
	MinClueLength *int `hcl:"min_clue_length,optional"`
	MaxClueLength *int `hcl:"max_clue_length,optional"`
	MaxMessage    *int `hcl:"max_message,optional"`
	MinUserName   *int `hcl:"min_user_name,optional"`
	MaxUserName   *int `hcl:"max_user_name,optional"`
}

// CardSet names a folder of card images under <static_dir>/cards
type CardSet struct {
	Name     string   `hcl:"name,label"`
	Folder   string   `hcl:"folder"`
	Default  bool     `hcl:"default,optional"`
	Suffixes []string `hcl:"suffixes,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	l := game.DefaultLimits()
	return &Config{
		Server: &ServerSettings{
			Address:       "localhost:8080",
			LogLevel:      "info",
			GameTTL:       "6h",
			SweepInterval: "1m",
			StaticDir:     "static",
			ChatCapacity:  1024,
		},
		Limits: &LimitSettings{
			MinName:       ptr(l.MinName),
			MaxName:       ptr(l.MaxName),
			MinPlayers:    ptr(l.MinPlayers),
			MaxPlayers:    ptr(l.MaxPlayers),
			MinScore:      ptr(l.MinScore),
			MaxScore:      ptr(-1),
			MinClueLength: ptr(l.MinClueLength),
			MaxClueLength: ptr(l.MaxClueLength),
			MaxMessage:    ptr(l.MaxMessage),
			MinUserName:   ptr(l.MinUserName),
			MaxUserName:   ptr(l.MaxUserName),
		},
		CardSets: []CardSet{
			{Name: "Original", Folder: "original", Default: true, Suffixes: []string{".jpg"}},
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields Default().
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Server == nil {
		c.Server = def.Server
	}
	s, d := c.Server, def.Server
	if s.Address == "" {
		s.Address = d.Address
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	if s.GameTTL == "" {
		s.GameTTL = d.GameTTL
	}
	if s.SweepInterval == "" {
		s.SweepInterval = d.SweepInterval
	}
	if s.StaticDir == "" {
		s.StaticDir = d.StaticDir
	}
	if s.ChatCapacity == 0 {
		s.ChatCapacity = d.ChatCapacity
	}

	if c.Limits == nil {
		c.Limits = def.Limits
	}
	l, dl := c.Limits, def.Limits
	for _, pair := range [][2]**int{
		{&l.MinName, &dl.MinName},
		{&l.MaxName, &dl.MaxName},
		{&l.MinPlayers, &dl.MinPlayers},
		{&l.MaxPlayers, &dl.MaxPlayers},
		{&l.MinScore, &dl.MinScore},
		{&l.MaxScore, &dl.MaxScore},
		{&l.MinClueLength, &dl.MinClueLength},
		{&l.MaxClueLength, &dl.MaxClueLength},
		{&l.MaxMessage, &dl.MaxMessage},
		{&l.MinUserName, &dl.MinUserName},
		{&l.MaxUserName, &dl.MaxUserName},
	} {
		if *pair[0] == nil {
			*pair[0] = *pair[1]
		}
	}

	if len(c.CardSets) == 0 {
		c.CardSets = def.CardSets
	}
	for i := range c.CardSets {
		if len(c.CardSets[i].Suffixes) == 0 {
			c.CardSets[i].Suffixes = []string{".jpg"}
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	for name, v := range map[string]string{"game_ttl": c.Server.GameTTL, "sweep_interval": c.Server.SweepInterval} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Server.ChatCapacity < 1 {
		return fmt.Errorf("chat_capacity must be positive")
	}

	l := c.GameLimits()
	for _, r := range []struct {
		name   string
		lo, hi int
	}{
		{"name", l.MinName, l.MaxName},
		{"players", l.MinPlayers, l.MaxPlayers},
		{"score", l.MinScore, l.MaxScore},
		{"clue_length", l.MinClueLength, l.MaxClueLength},
		{"user_name", l.MinUserName, l.MaxUserName},
	} {
		if r.lo < 0 || r.lo > r.hi {
			return fmt.Errorf("limits: min_%s must be between 0 and max_%s", r.name, r.name)
		}
	}
	if l.MinPlayers < 2 {
		return fmt.Errorf("limits: min_players must be at least 2")
	}
	if l.MaxMessage < 1 {
		return fmt.Errorf("limits: max_message must be positive")
	}

	if len(c.CardSets) == 0 {
		return fmt.Errorf("at least one card set must be configured")
	}
	seen := make(map[string]bool)
	for _, cs := range c.CardSets {
		if seen[cs.Name] {
			return fmt.Errorf("card set %q: duplicate name", cs.Name)
		}
		seen[cs.Name] = true
		if cs.Folder == "" || filepath.IsAbs(cs.Folder) || strings.Contains(cs.Folder, "..") {
			return fmt.Errorf("card set %q: folder must be a relative path inside the cards directory", cs.Name)
		}
	}
	return nil
}

// GameTTL returns how long a game may stay idle before it is removed
func (c *Config) GameTTL() time.Duration {
	d, _ := time.ParseDuration(c.Server.GameTTL)
	return d
}

// SweepInterval returns how often idle games are looked for
func (c *Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Server.SweepInterval)
	return d
}

// GameLimits converts the limits block, mapping -1 to game.Unbounded
func (c *Config) GameLimits() game.Limits {
	l := c.Limits
	return game.Limits{
		MinName:       bound(l.MinName),
		MaxName:       bound(l.MaxName),
		MinPlayers:    bound(l.MinPlayers),
		MaxPlayers:    bound(l.MaxPlayers),
		MinScore:      bound(l.MinScore),
		MaxScore:      bound(l.MaxScore),
		MinClueLength: bound(l.MinClueLength),
		MaxClueLength: bound(l.MaxClueLength),
		MaxMessage:    bound(l.MaxMessage),
		MinUserName:   bound(l.MinUserName),
		MaxUserName:   bound(l.MaxUserName),
	}
}

// LoadCardSets scans <static_dir>/cards/<folder> for every configured set.
// Images are referenced by their URL under CardsPath, sorted by file name.
func (c *Config) LoadCardSets() ([]*deck.CardSet, error) {
	root := filepath.Join(c.Server.StaticDir, "cards")
	sets := make([]*deck.CardSet, 0, len(c.CardSets))
	for _, cs := range c.CardSets {
		entries, err := os.ReadDir(filepath.Join(root, cs.Folder))
		if err != nil {
			return nil, fmt.Errorf("card set %q: %w", cs.Name, err)
		}

		var images []string
		for _, e := range entries {
			if e.IsDir() || !hasSuffix(e.Name(), cs.Suffixes) {
				continue
			}
			images = append(images, path.Join(CardsPath, filepath.ToSlash(cs.Folder), e.Name()))
		}
		slices.Sort(images)
		sets = append(sets, deck.NewCardSet(cs.Name, images, cs.Default))
	}
	return sets, nil
}

// WriteDefault writes Default() as HCL to filename
func WriteDefault(filename string, overwrite bool) error {
	return fileutil.WriteAtomic(filename, 0o644, overwrite, Default().Encode)
}

// Encode renders the configuration as HCL
func (c *Config) Encode(w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	_, err := f.WriteTo(w)
	return err
}

func hasSuffix(name string, suffixes []string) bool {
	return slices.ContainsFunc(suffixes, func(s string) bool {
		return strings.HasSuffix(name, s)
	})
}

func bound(v *int) int {
	if v == nil || *v == -1 {
		return game.Unbounded
	}
	return *v
}

func ptr(v int) *int {
	return &v
}
