package models

import "strings"

// Tag is one installation targeting tag, e.g. game:chess-2024 or
// userid:u-1001. Tags are the only segmentation mechanism the registry and
// push transport share; building them through these constructors keeps raw
// string concatenation out of the targeting path.
type Tag struct {
	Kind  string
	Value string
}

func (t Tag) String() string {
	return t.Kind + ":" + t.Value
}

func UserTag(userID string) Tag {
	return Tag{Kind: "userid", Value: userID}
}

func PlatformTag(platform DevicePlatform) Tag {
	return Tag{Kind: "platform", Value: strings.ToLower(string(platform))}
}

func LanguageTag(language string) Tag {
	return Tag{Kind: "language", Value: language}
}

func GameTag(gameID string) Tag {
	return Tag{Kind: "game", Value: gameID}
}

// ParseTag parses the stored kind:value form back into a Tag.
func ParseTag(s string) (Tag, bool) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok || kind == "" {
		return Tag{}, false
	}
	return Tag{Kind: kind, Value: value}, true
}

// TagExpression is a conjunction over installation tags. An empty
// expression matches every installation.
type TagExpression []Tag

func (x TagExpression) String() string {
	if len(x) == 0 {
		return ""
	}
	parts := make([]string, len(x))
	for i, t := range x {
		parts[i] = t.String()
	}
	return strings.Join(parts, " && ")
}
