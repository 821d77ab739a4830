package presenter

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"cracktunes-go/music/resolver"
)

// maxSuggestions is the design §4.7 figure ("up to 5 results"); Discord
// itself accepts up to 25 autocomplete choices.
const maxSuggestions = 5

// maxChoiceNameLen is Discord's application-command-option-choice name
// length limit.
const maxChoiceNameLen = 100

// BuildChoices asks res for up to maxSuggestions matches for partial and
// renders them as Discord autocomplete choices (design §4.7: label =
// "{title} ({duration})", truncated at a UTF-8 boundary to at most
// maxChoiceNameLen characters; value = the canonical URL).
func BuildChoices(ctx context.Context, res *resolver.Resolver, partial string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	suggestions, err := res.Suggest(ctx, partial, maxSuggestions)
	if err != nil {
		return nil, err
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(suggestions))
	for _, s := range suggestions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncateLabel(s.Label),
			Value: s.Value,
		})
	}
	return choices, nil
}

// truncateLabel shortens label to maxChoiceNameLen runes, preferring to
// trim the title portion of a "{title} ({duration})" label so the
// trailing duration stays intact.
func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxChoiceNameLen {
		return label
	}

	if idx := strings.LastIndex(label, " ("); idx >= 0 {
		suffix := []rune(label[idx:])
		if len(suffix) < maxChoiceNameLen {
			titleBudget := maxChoiceNameLen - len(suffix)
			title := []rune(label[:idx])
			if len(title) > titleBudget {
				title = title[:titleBudget]
			}
			return string(title) + string(suffix)
		}
	}
	return string(runes[:maxChoiceNameLen])
}
