package voice

import (
	"encoding/xml"
	"strings"

	"github.com/aleister1102/fleetvoice/internal/config"
)

// ContentType is the media type of formatted documents.
const ContentType = "text/xml; charset=utf-8"

const addressPlaceholder = "{address}"

type sayElement struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type responseElement struct {
	XMLName xml.Name `xml:"Response"`
	Say     sayElement
}

// Formatter renders spoken-response documents. It is stateless.
type Formatter struct {
	voice    string
	language string
	template string
	apology  string
}

func NewFormatter(cfg config.VoiceConfig) *Formatter {
	f := &Formatter{
		voice:    cfg.Voice,
		language: cfg.Language,
		template: cfg.Template,
		apology:  cfg.Apology,
	}
	if f.template == "" {
		f.template = addressPlaceholder
	}
	if f.apology == "" {
		f.apology = config.DefaultVoiceApology
	}
	return f
}

// Format renders text through the template, or the apology when text is nil.
func (f *Formatter) Format(text *string) ([]byte, error) {
	spoken := f.apology
	if text != nil {
		spoken = f.Sentence(*text)
	}

	body, err := xml.Marshal(responseElement{
		Say: sayElement{Voice: f.voice, Language: f.language, Text: spoken},
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Sentence applies the template to an address.
func (f *Formatter) Sentence(address string) string {
	if !strings.Contains(f.template, addressPlaceholder) {
		return f.template + " " + address
	}
	return strings.ReplaceAll(f.template, addressPlaceholder, address)
}
