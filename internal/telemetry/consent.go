package telemetry

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const consentBanner = `
╭──────────────────────────────────────────────────────────────╮
│  Help improve tasklist?                                      │
│                                                              │
│  tasklist can send anonymous usage statistics: which         │
│  commands run, how long they take, and error kinds.          │
│  Task text, dates and file paths are never sent.             │
│                                                              │
│  Change this anytime with:                                   │
│    tasklist telemetry disable                                │
╰──────────────────────────────────────────────────────────────╯
`

// PromptConsent asks once whether telemetry may be enabled, records the
// answer in cfg and saves it. When interactive is false the answer is
// "no" without prompting. An empty answer means no.
func PromptConsent(cfg *Config, in io.Reader, out io.Writer, interactive bool) (bool, error) {
	if !cfg.NeedsConsent() {
		return cfg.IsEnabled(), nil
	}

	enabled := false
	if interactive {
		fmt.Fprint(out, consentBanner)
		fmt.Fprint(out, "\nEnable anonymous telemetry? [y/N] ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err == nil || (err == io.EOF && line != "") {
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				enabled = true
			}
		}
	}

	if enabled {
		cfg.Enable()
	} else {
		cfg.Disable()
	}
	if err := cfg.Save(); err != nil {
		return enabled, err
	}

	if interactive {
		if enabled {
			fmt.Fprintln(out, "Telemetry enabled. Thanks!")
		} else {
			fmt.Fprintln(out, "Telemetry disabled. Enable it anytime with: tasklist telemetry enable")
		}
	}
	return enabled, nil
}
