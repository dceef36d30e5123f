package external

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apientities "github.com/fadedpez/dnd5e-api/entities"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/entities"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// upstream equipment category keys
var equipmentCategories = map[Category]string{
	CategoryWeapons: "weapon",
	CategoryArmor:   "armor",
	CategoryTools:   "tools",
}

const twoHandedProperty = "two-handed"

// api is the part of the dnd5e-api client the catalog uses
type api interface {
	GetEquipmentCategory(key string) (*apientities.EquipmentCategory, error)
	GetEquipment(key string) (dnd5e.EquipmentInterface, error)
	ListSpells(input *dnd5e.ListSpellsInput) ([]*apientities.ReferenceItem, error)
	GetSpell(key string) (*apientities.Spell, error)
}

// Config contains configuration options for the catalog client.
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to https://www.dnd5eapi.co/api/2014/)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// CacheTTL for the upstream response cache (optional, defaults to 24 hours)
	CacheTTL time.Duration
	// Tables supplies the language list
	Tables *rules.Tables
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg.Tables == nil {
		return errors.InvalidArgument("tables are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return nil
}

// Client is the uncached catalog over the D&D 5e API
type Client struct {
	api    api
	tables *rules.Tables
	title  cases.Caser
}

// New creates a catalog client with the given configuration.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  httpClient,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create D&D 5e API client")
	}

	return newClient(dnd5e.NewCachedClient(baseClient, cfg.CacheTTL), cfg.Tables), nil
}

func newClient(a api, tables *rules.Tables) *Client {
	return &Client{
		api:    a,
		tables: tables,
		title:  cases.Title(language.English),
	}
}

// ListCategory returns the entries of one category
func (c *Client) ListCategory(_ context.Context, category Category) ([]Entry, error) {
	switch category {
	case CategoryLanguages:
		return c.languages(), nil
	case CategorySpells:
		slog.Info("Calling D&D 5e API to list spells")
		refs, err := c.api.ListSpells(&dnd5e.ListSpellsInput{})
		if err != nil {
			return nil, upstreamError(err, "failed to list spells")
		}
		return toEntries(refs, category), nil
	}

	key, ok := equipmentCategories[category]
	if !ok {
		return nil, errors.InvalidArgumentf("unknown catalog category %q", category)
	}

	slog.Info("Calling D&D 5e API to list equipment", "category", key)
	ec, err := c.api.GetEquipmentCategory(key)
	if err != nil {
		return nil, upstreamError(err, fmt.Sprintf("failed to get equipment category %s", key))
	}
	if ec == nil {
		return []Entry{}, nil
	}
	return toEntries(ec.Equipment, category), nil
}

// GetDetail looks the id up as a language, then equipment, then a spell
func (c *Client) GetDetail(_ context.Context, id string) (*EntryDetail, error) {
	if id == "" {
		return nil, errors.InvalidArgument("catalog id is required")
	}

	if c.tables.IsKnown(entities.KindLanguages, id) {
		return &EntryDetail{Entry: Entry{ID: id, Name: c.displayName(id), Category: CategoryLanguages}}, nil
	}

	equipment, equipErr := c.api.GetEquipment(id)
	if equipErr == nil && equipment != nil {
		if detail := equipmentDetail(id, equipment); detail != nil {
			return detail, nil
		}
	}

	spell, spellErr := c.api.GetSpell(id)
	if spellErr == nil && spell != nil {
		return spellDetail(spell), nil
	}

	for _, err := range []error{equipErr, spellErr} {
		if err != nil && !isMissing(err) {
			return nil, upstreamError(err, fmt.Sprintf("failed to look up catalog entry %s", id))
		}
	}
	return nil, errors.NotFoundf("catalog entry %q not found", id)
}

// isMissing reports whether the api answered 404. The client only exposes the
// status code in the error text.
func isMissing(err error) bool {
	return strings.HasSuffix(err.Error(), fmt.Sprintf("status code: %d", http.StatusNotFound))
}

func (c *Client) languages() []Entry {
	ids := c.tables.Known(entities.KindLanguages)
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, Entry{ID: id, Name: c.displayName(id), Category: CategoryLanguages})
	}
	return out
}

// displayName turns a table id like "deep-speech" into "Deep Speech"
func (c *Client) displayName(id string) string {
	return c.title.String(strings.ReplaceAll(id, "-", " "))
}

func toEntries(refs []*apientities.ReferenceItem, category Category) []Entry {
	out := make([]Entry, 0, len(refs))
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		out = append(out, Entry{ID: ref.Key, Name: ref.Name, Category: category})
	}
	return out
}

func equipmentDetail(id string, equipment dnd5e.EquipmentInterface) *EntryDetail {
	switch eq := equipment.(type) {
	case *apientities.Weapon:
		detail := &EntryDetail{
			Entry:       Entry{ID: id, Name: eq.Name, Category: CategoryWeapons},
			Description: strings.TrimSpace(fmt.Sprintf("%s %s weapon", eq.WeaponCategory, eq.WeaponRange)),
		}
		for _, prop := range eq.Properties {
			if prop == nil {
				continue
			}
			detail.Properties = append(detail.Properties, prop.Name)
			if prop.Key == twoHandedProperty || strings.EqualFold(prop.Name, "Two-Handed") {
				detail.TwoHanded = true
			}
		}
		return detail
	case *apientities.Armor:
		return &EntryDetail{
			Entry:       Entry{ID: id, Name: eq.Name, Category: CategoryArmor},
			Description: strings.TrimSpace(fmt.Sprintf("%s armor", eq.ArmorCategory)),
		}
	case *apientities.Equipment:
		category := CategoryTools
		if eq.EquipmentCategory != nil && eq.EquipmentCategory.Key != "tools" {
			category = Category(eq.EquipmentCategory.Key)
		}
		return &EntryDetail{Entry: Entry{ID: id, Name: eq.Name, Category: category}}
	}
	return nil
}

func spellDetail(spell *apientities.Spell) *EntryDetail {
	level := "Cantrip"
	if spell.SpellLevel > 0 {
		level = fmt.Sprintf("Level %d", spell.SpellLevel)
	}

	parts := []string{level}
	if spell.CastingTime != "" {
		parts = append(parts, "Casting Time: "+spell.CastingTime)
	}
	if spell.Range != "" {
		parts = append(parts, "Range: "+spell.Range)
	}
	if spell.Duration != "" {
		parts = append(parts, "Duration: "+spell.Duration)
	}

	var props []string
	if spell.Ritual {
		props = append(props, "Ritual")
	}
	if spell.Concentration {
		props = append(props, "Concentration")
	}

	return &EntryDetail{
		Entry:       Entry{ID: spell.Key, Name: spell.Name, Category: CategorySpells},
		Description: strings.Join(parts, ". "),
		Properties:  props,
	}
}

func upstreamError(err error, message string) error {
	slog.Error("D&D 5e API call failed", "error", err)
	return errors.WrapWithCode(err, errors.CodeUnavailable, message)
}
