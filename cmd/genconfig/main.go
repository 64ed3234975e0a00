// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	config "codeberg.org/pixivfe/i18ncheck/configs"
)

const (
	envOutputFile  = ".env.example"
	yamlOutputFile = "i18ncheck.yaml.example"
	filePerm       = 0o644

	envFileHeader = `# i18ncheck configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# i18ncheck configuration (via configuration file)
#
# Copy this file to i18ncheck.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	functionsYAMLComment = `  # -- Argument indexes start at 0; -1 marks an argument the function does not take.`
)

func main() {
	dir := flag.String("dir", "deploy", "Directory the example files are written to.")
	flag.Parse()

	config.SetupLogging(os.Stderr, "info", "console")

	cfg := &config.Config{}
	cfg.SetDefaults()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal().Err(err).Str("path", *dir).Msg("Failed to create output directory")
	}

	write(filepath.Join(*dir, envOutputFile), envFile(cfg))

	yamlContent, err := yamlFile(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	write(filepath.Join(*dir, yamlOutputFile), yamlContent)
}

func write(path, content string) {
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write example file")
	}

	log.Info().Str("path", path).Msg("Successfully generated example file")
}

type envVar struct {
	name, value string
}

type envSection struct {
	title string
	vars  []envVar
}

// envSections collects the environment variables of every tagged config
// section, with their default values rendered the way env parses them.
func envSections(cfg *config.Config) []envSection {
	root := reflect.ValueOf(cfg).Elem()

	var sections []envSection

	for _, sf := range reflect.VisibleFields(root.Type()) {
		sv := root.FieldByIndex(sf.Index)
		if sv.Kind() != reflect.Struct || sf.Tag.Get("env") == "-" {
			continue
		}

		prefix := config.EnvPrefix + sf.Tag.Get("envPrefix")
		section := envSection{title: sf.Name}

		for _, f := range reflect.VisibleFields(sv.Type()) {
			name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
			if name == "" || name == "-" {
				continue
			}

			section.vars = append(section.vars, envVar{name: prefix + name, value: envValue(sv.FieldByIndex(f.Index))})
		}

		sections = append(sections, section)
	}

	return sections
}

func envValue(v reflect.Value) string {
	if v.Kind() != reflect.Slice {
		return fmt.Sprint(v.Interface())
	}

	items := make([]string, v.Len())
	for i := range items {
		items[i] = fmt.Sprint(v.Index(i).Interface())
	}

	return strings.Join(items, ",")
}

// envFile lists one commented assignment per environment variable, grouped
// by configuration section.
func envFile(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString(envFileHeader)
	fmt.Fprintf(&b, "## Config file\n# %sCONFIG=./i18ncheck.yaml\n\n", config.EnvPrefix)

	for _, section := range envSections(cfg) {
		fmt.Fprintf(&b, "## %s\n", section.title)

		for _, v := range section.vars {
			fmt.Fprintf(&b, "# %s=%s\n", v.name, v.value)
		}

		b.WriteByte('\n')
	}

	return b.String()
}

// yamlFile comments out every option except catalog.path.
func yamlFile(cfg *config.Config) (string, error) {
	var yamlContent strings.Builder

	if err := yaml.NewEncoder(&yamlContent, yaml.Indent(2)).Encode(cfg); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	section := ""

	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys (e.g., "catalog:") are treated as section headers.
		if !strings.HasPrefix(line, " ") {
			section = strings.TrimSuffix(trimmed, ":")
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		if section == "catalog" && strings.HasPrefix(line, "  path:") {
			sb.WriteString(line + "\n")

			continue
		}

		if section == "analysis" && strings.HasPrefix(line, "  functions:") {
			sb.WriteString(functionsYAMLComment + "\n")
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	return sb.String(), nil
}
