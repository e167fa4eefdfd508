package worldgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/world-engine/pkg/world"
)

// ErrParse marks oracle output that could not be coerced into an area
// record. It is always recovered at the engine boundary.
var ErrParse = errors.New("unparseable oracle response")

// npcRoleKeywords are role nouns scanned for in generated descriptions, so
// an NPC the oracle describes but forgets to list still ends up in the
// area's NPC roster.
var npcRoleKeywords = []string{
	"guide", "hermit", "merchant", "traveler", "warrior", "mage", "wizard",
	"keeper", "guard", "soldier", "villager", "hunter", "gatherer",
	"shaman", "priest", "elder",
}

var titleCaser = cases.Title(language.English)

// areaRecord is the loosely-typed shape expected inside the oracle's
// response. Every field is optional; coercion fills the gaps.
type areaRecord struct {
	LocationID   string             `json:"location_id"`
	Name         string             `json:"name"`
	Location     string             `json:"location"`
	SubLocation  string             `json:"sub_location"`
	Coordinates  []int              `json:"coordinates"`
	Description  string             `json:"description"`
	Attributes   []string           `json:"attributes"`
	Exits        map[string]*string `json:"exits"`
	Items        []string           `json:"items"`
	NPCs         []string           `json:"npcs"`
	DangerLevel  int                `json:"danger_level"`
	RequiresItem string             `json:"requires_item"`
}

// parseAreaResponse extracts one area record from an oracle response and
// coerces it into a world.Area belonging to the given region. The response
// is untrusted: surrounding prose and markdown fences are tolerated, and
// anything that cannot be extracted fails closed without a partial area.
func parseAreaResponse(response, region string) (*world.Area, error) {
	payload, err := extractJSON(response)
	if err != nil {
		return nil, err
	}

	var rec areaRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	area := world.NewArea(rec.LocationID, rec.Name, region)
	area.SubRegion = rec.SubLocation
	area.Description = rec.Description
	area.RequiresItem = rec.RequiresItem

	if area.Name == "" {
		return nil, fmt.Errorf("%w: missing area name", ErrParse)
	}
	if area.ID == "" {
		area.ID = slugify(rec.Name)
	}
	if area.ID == "" {
		area.ID = uuid.NewString()
	}

	for i, c := range rec.Coordinates {
		if i >= 3 {
			break
		}
		area.Coordinates[i] = c
	}

	area.DangerLevel = rec.DangerLevel
	if area.DangerLevel < 0 {
		area.DangerLevel = 0
	}
	if area.DangerLevel > 10 {
		area.DangerLevel = 10
	}

	for _, a := range rec.Attributes {
		area.AddAttribute(a)
	}
	for dir, target := range rec.Exits {
		if target == nil {
			area.AddExit(strings.ToLower(dir), "")
		} else {
			area.AddExit(strings.ToLower(dir), *target)
		}
	}
	for _, item := range rec.Items {
		area.AddItem(item)
	}
	for _, npc := range rec.NPCs {
		area.AddNPC(npc)
	}

	enrichNPCs(area)
	return area, nil
}

// extractJSON pulls one JSON object out of the response: a fenced ```json
// block if present, otherwise the outermost brace-delimited span.
func extractJSON(response string) (string, error) {
	if idx := strings.Index(response, "```json"); idx >= 0 {
		rest := response[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), nil
		}
	}

	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return response[start : end+1], nil
	}

	return "", fmt.Errorf("%w: no JSON object found", ErrParse)
}

// enrichNPCs scans the description for role keywords the oracle mentioned
// in prose but left off the npcs list, and adds them title-cased. A match
// with a preceding adjective keeps it ("weathered hermit" -> "Weathered
// Hermit").
func enrichNPCs(area *world.Area) {
	description := strings.ToLower(area.Description)
	if description == "" {
		return
	}

	listed := make(map[string]struct{}, len(area.NPCs))
	for _, npc := range area.NPCs {
		for _, word := range strings.Fields(strings.ToLower(npc)) {
			listed[word] = struct{}{}
		}
	}

	for _, keyword := range npcRoleKeywords {
		if !strings.Contains(description, keyword) {
			continue
		}
		if _, ok := listed[keyword]; ok {
			continue
		}

		name := keyword
		re := regexp.MustCompile(`(?:\b(?:a|an|the)\s+)?([a-z]+\s+` + regexp.QuoteMeta(keyword) + `)\b`)
		if m := re.FindStringSubmatch(description); m != nil {
			candidate := m[1]
			// skip when the "adjective" is an article
			first := strings.Fields(candidate)[0]
			if first != "a" && first != "an" && first != "the" {
				name = candidate
			}
		}
		area.AddNPC(titleCaser.String(name))
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a display name into a lowercase underscore id.
func slugify(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}
