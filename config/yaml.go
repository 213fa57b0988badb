package config

import (
	"reflect"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/bangjelkoski/injective-dexly/log"
)

// WriteYamlWithComments renders config as YAML, placing each field's `comment` tag above it. Existing files
// are left untouched.
func WriteYamlWithComments(config interface{}, header string, filename string, logger *log.Logger) (bool, error) {
	fileData, err := addCommentsToYaml(config, header)
	if err != nil {
		return false, err
	}

	return SafeWrite(filename, fileData, logger)
}

func addCommentsToYaml(config interface{}, header string) ([]byte, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, err
	}

	// Handle both struct and pointer to struct
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	comments := make(map[string]string)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		yamlKey := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if comment := field.Tag.Get("comment"); yamlKey != "" && comment != "" {
			comments[yamlKey] = comment
		}
	}

	var result strings.Builder
	if header != "" {
		result.WriteString("# " + header + "\n")
	}

	// Only top level keys carry comments. Nested lines are indented and never match.
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if key, _, found := strings.Cut(line, ":"); found {
			if comment, ok := comments[key]; ok {
				result.WriteString("\n# " + comment + "\n")
			}
		}
		result.WriteString(line)
	}

	return []byte(result.String()), nil
}
