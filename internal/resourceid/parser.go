package resourceid

import (
	"fmt"
	"regexp"
	"strconv"
)

// idRegex parses the canonical form `module::Entity[agent,attr=value],v=N`.
// The version suffix is optional; an ID without one has version 0.
var idRegex = regexp.MustCompile(`^([a-zA-Z0-9_]+::[a-zA-Z0-9_]+)\[([^,\]]+),([a-zA-Z0-9_]+)=([^\]]*)\](?:,v=(\d+))?$`)

// Parse creates an ID by parsing its canonical string representation.
func Parse(raw string) (*ID, error) {
	if raw == "" {
		return nil, fmt.Errorf("resource id cannot be empty")
	}

	matches := idRegex.FindStringSubmatch(raw)
	if matches == nil {
		return nil, fmt.Errorf("invalid resource id format: %q", raw)
	}

	id := &ID{
		EntityType:     matches[1],
		Agent:          matches[2],
		AttributeName:  matches[3],
		AttributeValue: matches[4],
	}
	if matches[5] != "" {
		version, err := strconv.Atoi(matches[5])
		if err != nil {
			// Unreachable due to regex `\d+`
			return nil, fmt.Errorf("internal error parsing version: %w", err)
		}
		id.Version = version
	}

	return id, nil
}

// String serializes the ID into its canonical string representation.
func (id ID) String() string {
	return fmt.Sprintf("%s[%s,%s=%s],v=%d",
		id.EntityType, id.Agent, id.AttributeName, id.AttributeValue, id.Version)
}

// Unversioned serializes the ID without the version suffix. Two resources with
// the same unversioned id are the same resource across compiles.
func (id ID) Unversioned() string {
	return fmt.Sprintf("%s[%s,%s=%s]",
		id.EntityType, id.Agent, id.AttributeName, id.AttributeValue)
}
