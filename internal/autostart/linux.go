package autostart

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

const (
	unitName        = "copyjob.service"
	serviceTemplate = `[Unit]
Description=copyjob backup jobs
After=local-fs.target

[Service]
ExecStart={{.CommandLine}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`
)

var unitTmpl = template.Must(template.New("service").Parse(serviceTemplate))

type LinuxAutoStarter struct{}

func (l *LinuxAutoStarter) servicePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".config", "systemd", "user")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, unitName), nil
}

// WriteUnit renders the systemd user unit for execPath args.
func WriteUnit(w io.Writer, execPath string, args []string) error {
	return unitTmpl.Execute(w, map[string]string{"CommandLine": commandLine(execPath, args)})
}

func (l *LinuxAutoStarter) Install(execPath string, args []string) error {
	path, err := l.servicePath()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create service file: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := WriteUnit(f, execPath, args); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	return systemctl(
		[]string{"daemon-reload"},
		[]string{"enable", unitName},
		[]string{"restart", unitName},
	)
}

func (l *LinuxAutoStarter) Uninstall() error {
	_ = systemctl([]string{"stop", unitName})
	_ = systemctl([]string{"disable", unitName})

	path, err := l.servicePath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.servicePath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}

func systemctl(calls ...[]string) error {
	for _, args := range calls {
		cmd := exec.Command("systemctl", append([]string{"--user"}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("failed to run systemctl %v: %w\n%s", args, err, out)
		}
	}

	return nil
}
