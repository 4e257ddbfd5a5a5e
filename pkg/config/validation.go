package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their INI key so missing fields read "ip", "shares", ...
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// sectionKeys is the decoded form of one INI section
type sectionKeys struct {
	IP       string   `mapstructure:"ip" validate:"required"`
	Username string   `mapstructure:"username" validate:"required"`
	Password string   `mapstructure:"password" validate:"required"`
	Shares   []string `mapstructure:"shares" validate:"required,min=1"`
	Letters  []string `mapstructure:"letters"`
}

// requiredOrder is the order missing fields are reported in
var requiredOrder = []string{"ip", "username", "password", "shares"}

var stringSliceType = reflect.TypeOf([]string{})

// valueDecodeHook strips trailing comments from every value and splits list
// values on commas.
func valueDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		value := stripComment(data.(string))
		if to == stringSliceType {
			return splitList(value), nil
		}
		return value, nil
	}
}

// stripComment drops everything after the first '#' and trims whitespace.
func stripComment(value string) string {
	if i := strings.Index(value, "#"); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

// splitList splits a comma separated value, trimming each item.
// An empty value yields an empty list.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		items = append(items, strings.TrimSpace(part))
	}
	return items
}

// decodeSection turns raw INI key/values into a validated Section.
// unused receives keys that matched no known field.
func decodeSection(name string, values map[string]string) (Section, []string, error) {
	var keys sectionKeys
	var md mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: valueDecodeHook(),
		Metadata:   &md,
		Result:     &keys,
	})
	if err != nil {
		return Section{}, nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return Section{}, nil, fmt.Errorf("failed to decode section %s: %w", name, err)
	}

	section := Section{
		Name:     name,
		IP:       keys.IP,
		Username: keys.Username,
		Password: keys.Password,
		Shares:   keys.Shares,
	}
	section.missing = missingFields(&keys)
	section.Letters, section.problems = normalizeLetters(keys.Letters)
	section.problems = append(section.problems, valueProblems(&keys)...)

	return section, md.Unused, nil
}

// missingFields runs struct tag validation and returns the failed required
// keys in a stable order.
func missingFields(keys *sectionKeys) []string {
	err := validate.Struct(keys)
	if err == nil {
		return nil
	}

	failed := make(map[string]bool)
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			failed[e.Field()] = true
		}
	}

	var missing []string
	for _, field := range requiredOrder {
		if failed[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// normalizeLetters upper-cases preferred letters and blanks out invalid ones.
func normalizeLetters(raw []string) ([]string, []string) {
	if len(raw) == 0 {
		return nil, nil
	}

	var problems []string
	letters := make([]string, len(raw))
	for i, letter := range raw {
		letter = utils.NormalizeDriveLetter(letter)
		if letter == "" {
			continue
		}
		if err := utils.ValidateDriveLetter(letter); err != nil {
			problems = append(problems, fmt.Sprintf("letters[%d]: %v", i, err))
			continue
		}
		letters[i] = letter
	}
	return letters, problems
}

// valueProblems reports set values that net use cannot accept.
func valueProblems(keys *sectionKeys) []string {
	var problems []string
	if keys.IP != "" {
		if err := utils.ValidateHost(keys.IP); err != nil {
			problems = append(problems, fmt.Sprintf("ip: %v", err))
		}
	}
	if err := utils.ValidateCommandArg("username", keys.Username); err != nil {
		problems = append(problems, err.Error())
	}
	if err := utils.ValidateCommandArg("password", keys.Password); err != nil {
		problems = append(problems, err.Error())
	}
	for i, share := range keys.Shares {
		if err := utils.ValidateShareName(share); err != nil {
			problems = append(problems, fmt.Sprintf("shares[%d]: %v", i, err))
		}
	}
	return problems
}
