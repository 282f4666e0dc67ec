package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
)

// Resolution is the outcome of intent resolution. Exactly one of Action
// and Text is set.
type Resolution struct {
	Action Action
	Text   string
	Source string
}

const (
	SourceRules     = "rules"
	SourceReasoning = "reasoning"
)

const (
	greetingReply = "Hi! I can remember things for you, search what you saved, list, show, update or delete memories, and optimize prompts with your saved context. Type \"help\" for examples."
	helpReply     = `Things you can say:
  remember that I prefer dark mode
  search for deployment notes
  list my project memories
  show mem_abc123
  update mem_abc123 to use port 8080
  delete mem_abc123
  optimize prompt: write a release note`
	unknownReply = "I'm not sure what you want to do. Try \"remember ...\", \"search for ...\", \"list my memories\" or \"help\"."
)

var (
	idPattern = regexp.MustCompile(`(?i)\b(?:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|mem_[a-z0-9_-]+)\b`)

	greetingPattern = regexp.MustCompile(`(?i)^(?:hi|hello|hey|hiya|howdy|greetings|good (?:morning|afternoon|evening))(?:\s+there)?[\s!.,]*$`)
	optimizePattern = regexp.MustCompile(`(?i)^(?:please\s+)?(?:optimi[sz]e|improve|refine|rewrite|enhance)\s+(?:this\s+|my\s+|the\s+)?prompt\b[\s:,-]*(?:for\s+)?(.*)$`)
	createPattern   = regexp.MustCompile(`(?i)^(?:please\s+)?(?:remember|save|store|note)\b(?:\s+(?:that|this|down)\b)?\s*:?\s*(.*)$`)
	typeSuffix      = regexp.MustCompile(`(?i)\s+as\s+(?:an?\s+)?(context|project|knowledge|reference|personal|workflow)(?:\s+memory)?[.!]*$`)
	updatePattern   = regexp.MustCompile(`(?i)^(?:please\s+)?(?:update|edit|change|modify)\b`)
	updateValue     = regexp.MustCompile(`(?i)\b(?:to|with)\b\s*:?\s*(.+)$`)
	deletePattern   = regexp.MustCompile(`(?i)^(?:please\s+)?(?:delete|remove|forget|erase)\b`)
	searchPattern   = regexp.MustCompile(`(?i)^(?:please\s+)?(?:search|find|look\s*up|recall|what do (?:you|i) know about|do i have (?:any\s+)?(?:memories|notes) (?:about|on))(?:\s+(?:for|about|on))?\s*(?:memories\s+(?:about|for|on)\s+)?(.*?)[?.!]*$`)
	listPattern     = regexp.MustCompile(`(?i)^(?:please\s+)?(?:list|show|display|view)(?:\s+(?:me|all|my|the|recent))*\s+(?:(context|project|knowledge|reference|personal|workflow)\s+)?(?:memories|notes|everything)\b`)
	bareListPattern = regexp.MustCompile(`(?i)^(?:please\s+)?(?:list(?:\s+(?:me|all|my|the|recent|everything))*|(?:show|display|view)(?:\s+(?:me|all|my|the|recent|everything))+)[\s.!]*$`)
	limitPattern    = regexp.MustCompile(`(?i)\b(?:top|first|last|latest)\s+(\d{1,3})\b`)
	helpPattern     = regexp.MustCompile(`(?i)^(?:help|\?|commands|what can you do\??|how does this work\??)$`)
)

// ResolveByRules maps input to an action with no I/O. Rules are tried in a
// fixed order and rules that need an id come before generic ones.
func ResolveByRules(input string) Resolution {
	text := strings.TrimSpace(input)
	res := func(a Action) Resolution { return Resolution{Action: a, Source: SourceRules} }
	say := func(s string) Resolution { return Resolution{Text: s, Source: SourceRules} }

	if text == "" {
		return say(unknownReply)
	}
	if greetingPattern.MatchString(text) {
		return say(greetingReply)
	}
	if m := optimizePattern.FindStringSubmatch(text); m != nil {
		return res(OptimizePromptAction{Prompt: strings.TrimSpace(m[1])})
	}
	if m := createPattern.FindStringSubmatch(text); m != nil {
		return res(parseCreate(m[1]))
	}

	id := idPattern.FindString(text)
	if updatePattern.MatchString(text) {
		a := UpdateAction{ID: id}
		rest := text
		if id != "" {
			rest = text[strings.Index(text, id)+len(id):]
		}
		if m := updateValue.FindStringSubmatch(rest); m != nil {
			a.Content = strings.TrimSpace(m[1])
		}
		return res(a)
	}
	if deletePattern.MatchString(text) {
		return res(DeleteAction{ID: id})
	}
	if id != "" {
		return res(GetAction{ID: id})
	}
	if m := searchPattern.FindStringSubmatch(text); m != nil {
		return res(SearchAction{Query: strings.TrimSpace(m[1]), Limit: parseLimit(text)})
	}
	if m := listPattern.FindStringSubmatch(text); m != nil {
		return res(ListAction{MemoryType: memory.MemoryType(strings.ToLower(m[1])), Limit: parseLimit(text)})
	}
	if bareListPattern.MatchString(text) {
		return res(ListAction{})
	}
	if helpPattern.MatchString(text) {
		return say(helpReply)
	}
	return say(unknownReply)
}

func parseCreate(body string) CreateAction {
	body = strings.TrimSpace(body)
	a := CreateAction{MemoryType: memory.DefaultMemoryType}
	if m := typeSuffix.FindStringSubmatch(body); m != nil {
		a.MemoryType = memory.MemoryType(strings.ToLower(m[1]))
		body = strings.TrimSpace(body[:len(body)-len(m[0])])
	}
	a.Content = body
	return a
}

func parseLimit(text string) int {
	m := limitPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
