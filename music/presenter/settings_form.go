package presenter

import (
	"fmt"
	"net/url"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/schema"
)

// SettingsForm is the bundled shape of a /settings slash command's options,
// decoded in one pass instead of a long chain of per-option type switches
// (design §4.7: "presenter's settings-form parsing for /settings options
// bundled as a struct").
type SettingsForm struct {
	Prefix         string  `schema:"prefix"`
	Volume         float64 `schema:"volume"`
	Autopause      bool    `schema:"autopause"`
	Autoplay       bool    `schema:"autoplay"`
	SelfDeafen     bool    `schema:"self_deafen"`
	TimeoutSeconds int     `schema:"timeout_seconds"`
	AllowAllDomain bool    `schema:"allow_all_domains"`
	MusicChannel   string  `schema:"music_channel"`
}

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}()

// DecodeSettingsForm turns a slash command's option list into a
// SettingsForm. Only options actually present in the interaction end up
// set on the struct; everything else keeps its zero value, so a caller
// must check which fields were present in the raw options if "was this
// explicitly set vs. left at zero" matters.
func DecodeSettingsForm(options []*discordgo.ApplicationCommandInteractionDataOption) (SettingsForm, error) {
	values := url.Values{}
	for _, opt := range options {
		values.Set(opt.Name, fmt.Sprintf("%v", opt.Value))
	}

	var form SettingsForm
	if err := formDecoder.Decode(&form, values); err != nil {
		return SettingsForm{}, fmt.Errorf("decoding settings form: %w", err)
	}
	return form, nil
}
