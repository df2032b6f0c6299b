// Package help provides topic-based documentation for Sprig, used by
// `sprig describe` and the REPL's :describe command.
package help

import (
	"fmt"
	"sort"
	"strings"

	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
	"github.com/sambeau/sprig/pkg/sprig/evaluator"
	"github.com/sambeau/sprig/pkg/sprig/lexer"
)

// Result kinds
const (
	KindBuiltin      = "builtin"
	KindBuiltinList  = "builtin-list"
	KindOperatorList = "operator-list"
	KindKeywordList  = "keyword-list"
	KindType         = "type"
	KindTypeList     = "type-list"
)

// TopicResult represents the help output for a topic
type TopicResult struct {
	Kind        string                   `json:"kind"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Builtins    []evaluator.BuiltinInfo  `json:"builtins,omitempty"`
	Operators   []evaluator.OperatorInfo `json:"operators,omitempty"`
	Keywords    []KeywordInfo            `json:"keywords,omitempty"`
	Types       []evaluator.TypeInfo     `json:"types,omitempty"`
	Params      []string                 `json:"params,omitempty"`
	Arity       string                   `json:"arity,omitempty"`
	Category    string                   `json:"category,omitempty"`
	Example     string                   `json:"example,omitempty"`
	Literal     string                   `json:"literal,omitempty"`
}

// KeywordInfo describes a reserved word
type KeywordInfo struct {
	Keyword     string `json:"keyword"`
	Usage       string `json:"usage"`
	Description string `json:"description"`
}

var keywordDocs = map[string]KeywordInfo{
	"fn":     {Usage: "fn(a, b) { body }", Description: "Function literal; captures the surrounding scope"},
	"let":    {Usage: "let name = value", Description: "Binds a name in the current scope and the session"},
	"true":   {Usage: "true", Description: "Boolean true"},
	"false":  {Usage: "false", Description: "Boolean false"},
	"if":     {Usage: "if (cond) { a } else { b }", Description: "Conditional expression; null when no branch runs"},
	"else":   {Usage: "else { b }", Description: "Alternative branch of an if"},
	"return": {Usage: "return value", Description: "Ends the enclosing function or program with value"},
}

// Topics lists the fixed topic names
var Topics = []string{"builtins", "operators", "keywords", "types"}

// DescribeTopic returns help information for the given topic: one of
// Topics, a built-in name or a type name.
func DescribeTopic(topic string) (*TopicResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("no topic specified (try: %s)", strings.Join(Topics, ", "))
	}

	switch strings.ToLower(topic) {
	case "builtins":
		return describeBuiltins(), nil
	case "operators":
		return describeOperators(), nil
	case "keywords":
		return describeKeywords(), nil
	case "types":
		return describeTypes(), nil
	}

	if result := describeBuiltinByName(topic); result != nil {
		return result, nil
	}

	if result := describeType(topic); result != nil {
		return result, nil
	}

	return nil, unknownTopicError(topic)
}

func describeBuiltins() *TopicResult {
	builtins := make([]evaluator.BuiltinInfo, 0, len(evaluator.BuiltinMetadata))
	for _, info := range evaluator.BuiltinMetadata {
		builtins = append(builtins, info)
	}

	sort.Slice(builtins, func(i, j int) bool {
		if builtins[i].Category != builtins[j].Category {
			return builtins[i].Category < builtins[j].Category
		}
		return builtins[i].Name < builtins[j].Name
	})

	return &TopicResult{
		Kind:     KindBuiltinList,
		Name:     "builtins",
		Builtins: builtins,
	}
}

func describeOperators() *TopicResult {
	operators := make([]evaluator.OperatorInfo, len(evaluator.OperatorMetadata))
	copy(operators, evaluator.OperatorMetadata)

	return &TopicResult{
		Kind:      KindOperatorList,
		Name:      "operators",
		Operators: operators,
	}
}

func describeKeywords() *TopicResult {
	words := lexer.Keywords()
	keywords := make([]KeywordInfo, 0, len(words))
	for _, word := range words {
		info := keywordDocs[word]
		info.Keyword = word
		keywords = append(keywords, info)
	}

	return &TopicResult{
		Kind:     KindKeywordList,
		Name:     "keywords",
		Keywords: keywords,
	}
}

func describeTypes() *TopicResult {
	types := make([]evaluator.TypeInfo, 0, len(evaluator.TypeMetadata))
	for _, info := range evaluator.TypeMetadata {
		types = append(types, info)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].Name < types[j].Name
	})

	return &TopicResult{
		Kind:  KindTypeList,
		Name:  "types",
		Types: types,
	}
}

func describeBuiltinByName(name string) *TopicResult {
	info, ok := evaluator.BuiltinMetadata[name]
	if !ok {
		return nil
	}

	return &TopicResult{
		Kind:        KindBuiltin,
		Name:        info.Name,
		Description: info.Description,
		Params:      info.Params,
		Arity:       info.Arity,
		Category:    info.Category,
		Example:     info.Example,
	}
}

func describeType(name string) *TopicResult {
	info, ok := evaluator.TypeMetadata[strings.ToLower(name)]
	if !ok {
		return nil
	}

	return &TopicResult{
		Kind:        KindType,
		Name:        info.Name,
		Description: info.Description,
		Literal:     info.Literal,
	}
}

// allTopics returns every name DescribeTopic accepts
func allTopics() []string {
	topics := append([]string{}, Topics...)
	topics = append(topics, evaluator.BuiltinNames()...)
	for name := range evaluator.TypeMetadata {
		topics = append(topics, name)
	}
	sort.Strings(topics)
	return topics
}

func unknownTopicError(topic string) error {
	suggestions := serrors.FindTopMatches(strings.ToLower(topic), allTopics(), 3)

	if len(suggestions) > 0 {
		return fmt.Errorf("unknown topic: %s\nDid you mean: %s?", topic, strings.Join(suggestions, ", "))
	}

	return fmt.Errorf("unknown topic: %s\nTry: %s", topic, strings.Join(Topics, ", "))
}
