package config

import (
	"fmt"
	os2 "os"
	"os/user"
	"strings"

	"github.com/cometbft/cometbft/libs/os"

	"github.com/bangjelkoski/injective-dexly/log"
)

// ResolveFile expands a short path (ex. ~/.dexly/config.yaml => /home/user/.dexly/config.yaml) and fails if
// nothing is there.
func ResolveFile(configFile string) (string, error) {
	expandedConfigFile := ExpandHomeDir(configFile)
	if !os.FileExists(expandedConfigFile) {
		return "", fmt.Errorf("failed to load config file at: %s", configFile)
	}
	return expandedConfigFile, nil
}

func CreateDirectoryIfNeeded(configurationDirectory string, logger *log.Logger) error {
	expanded := ExpandHomeDir(configurationDirectory)
	exists, err := folderExists(expanded)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	err = os2.MkdirAll(expanded, 0o755)
	if err != nil {
		return err
	}

	logger.Info("created configuration directory", "configuration_dir", configurationDirectory)

	return nil
}

// SafeWrite never overwrites. It returns whether the file was written.
func SafeWrite(file string, contents []byte, logger *log.Logger) (bool, error) {
	expanded := ExpandHomeDir(file)
	if os.FileExists(expanded) {
		logger.Warn("skipping overwriting existing file", "file", expanded)
		return false, nil
	}

	err := os.WriteFile(expanded, contents, 0o644)
	if err != nil {
		return false, err
	}
	logger.Info("wrote file", "file", expanded)
	return true, nil
}

func ExpandHomeDir(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	usr, err := user.Current()
	if err != nil {
		panic(fmt.Errorf("failed to get user's home directory: %v", err))
	}
	return strings.Replace(path, "~", usr.HomeDir, 1)
}

func folderExists(folderPath string) (bool, error) {
	fileInfo, err := os2.Stat(folderPath)
	if err != nil {
		if os2.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fileInfo.IsDir(), nil
}
