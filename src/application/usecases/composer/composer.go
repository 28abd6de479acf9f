package composer

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	domainContact "go-wa-dispatch/src/domain/contact"
	domainSettings "go-wa-dispatch/src/domain/settings"
)

var (
	ErrMissingNickname  = errors.New("contact has no nickname")
	ErrMissingGreetings = errors.New("message template has no greetings")
	ErrMissingMain      = errors.New("message template has no main message")
	ErrMissingFarewells = errors.New("message template has no farewells")
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

type IComposer interface {
	Compose(contact *domainContact.Contact, template domainSettings.Template, testMode bool) (string, error)
}

// Composer builds campaign message text. It does no I/O; the random source
// only picks the greeting and farewell variants.
type Composer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewComposer() *Composer {
	return NewComposerWithSource(rand.NewSource(time.Now().UnixNano()))
}

func NewComposerWithSource(src rand.Source) *Composer {
	return &Composer{rnd: rand.New(src)}
}

func (c *Composer) pick(options []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return options[c.rnd.Intn(len(options))]
}

func (c *Composer) Compose(contact *domainContact.Contact, template domainSettings.Template, testMode bool) (string, error) {
	if contact == nil || strings.TrimSpace(contact.Nickname) == "" {
		return "", ErrMissingNickname
	}
	if len(template.Greetings) == 0 {
		return "", ErrMissingGreetings
	}
	if strings.TrimSpace(template.MainMessage) == "" {
		return "", ErrMissingMain
	}
	if len(template.Farewells) == 0 {
		return "", ErrMissingFarewells
	}

	text := c.pick(template.Greetings) + "\n\n" + template.MainMessage + "\n\n" + c.pick(template.Farewells)
	return strings.TrimSpace(Substitute(text, contact, testMode)), nil
}

// Substitute replaces {variable} placeholders (case-insensitive) with contact
// fields. Unknown placeholders are left untouched, and so is everything except
// nickname and phone when testMode is set.
func Substitute(text string, contact *domainContact.Contact, testMode bool) string {
	allowed := domainContact.TemplateVariables
	if testMode {
		allowed = make(map[string]domainContact.Accessor, len(domainContact.TestModeVariables))
		for _, name := range domainContact.TestModeVariables {
			allowed[name] = domainContact.TemplateVariables[name]
		}
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.ToLower(match[1 : len(match)-1])
		accessor, ok := allowed[name]
		if !ok {
			return match
		}
		if value := accessor(contact); value != nil {
			return *value
		}
		return ""
	})
}
