package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tonhe/pulse/internal/config"
	"github.com/tonhe/pulse/tui/styles"
)

func configCmd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pulse config <path|show|theme|dashboard>")
		os.Exit(1)
	}

	switch args[0] {
	case "path":
		configPath()
	case "show":
		configShow()
	case "theme":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: pulse config theme NAME")
			os.Exit(1)
		}
		configSetTheme(args[1])
	case "dashboard":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: pulse config dashboard ID")
			os.Exit(1)
		}
		configSetDashboard(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: pulse config <path|show|theme|dashboard>")
		os.Exit(1)
	}
}

func configPath() {
	path, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func configShow() {
	if err := toml.NewEncoder(os.Stdout).Encode(LoadConfig("")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configSetTheme(name string) {
	if styles.GetThemeByName(name) == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown theme %q\n", name)
		fmt.Fprintln(os.Stderr, "Run 'pulse themes' to see available themes.")
		os.Exit(1)
	}

	cfg := LoadConfig("")
	cfg.Theme = name
	saveConfig(cfg)

	fmt.Printf("Default theme set to %q.\n", name)
}

func configSetDashboard(id string) {
	cfg := LoadConfig("")
	cfg.InitialDashboard = id
	saveConfig(cfg)

	fmt.Printf("Initial dashboard set to %q.\n", id)
}

func themesCmd() {
	for _, name := range styles.ListThemes() {
		fmt.Println(name)
	}
}

// LoadConfig loads the config at path, or the default config path when path
// is empty, falling back to defaults when the file is missing or invalid.
func LoadConfig(path string) *config.Config {
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return config.DefaultConfig()
		}
		path = p
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// saveConfig writes the config to disk, creating directories as needed.
func saveConfig(cfg *config.Config) {
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directories: %v\n", err)
		os.Exit(1)
	}

	path, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.SaveConfig(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
}
