package bus

import (
	"strings"
	"unicode"
)

// UnroutedSuffix is the topic segment for event types with no mapping
const UnroutedSuffix = "unrouted"

// TopicMapper derives bus topic names from event types. Known types map to
// "<prefix>.<kebab-case-type>"; anything else lands on the unrouted topic so
// no event is silently dropped.
type TopicMapper struct {
	prefix string
	known  map[string]string
}

// NewTopicMapper creates a mapper for the given topic prefix and known event types
func NewTopicMapper(prefix string, knownTypes []string) *TopicMapper {
	known := make(map[string]string, len(knownTypes))
	for _, t := range knownTypes {
		known[t] = prefix + "." + kebabCase(t)
	}
	return &TopicMapper{prefix: prefix, known: known}
}

// TopicFor returns the topic an event type publishes to
func (m *TopicMapper) TopicFor(eventType string) string {
	if topic, ok := m.known[eventType]; ok {
		return topic
	}
	return m.prefix + "." + UnroutedSuffix
}

// Topics returns every topic the mapper can route to, unrouted included
func (m *TopicMapper) Topics() []string {
	topics := make([]string, 0, len(m.known)+1)
	for _, topic := range m.known {
		topics = append(topics, topic)
	}
	return append(topics, m.prefix+"."+UnroutedSuffix)
}

// kebabCase converts a CamelCase event type to kebab-case,
// e.g. "JournalEntryPosted" becomes "journal-entry-posted".
func kebabCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
