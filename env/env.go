package env

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/glibtools/restyjson/util"
)

const envFile = ".env"

func GetEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		value = fallback
	}
	return value
}

// LoadEnvironment loads .env from the usual places, then files.
// Variables already set are kept. It returns the files that were loaded.
func LoadEnvironment(files ...string) []string {
	rootDir := util.RootDir()
	var candidates []string
	for _, dir := range []string{".", rootDir, filepath.Join(rootDir, "etc")} {
		candidates = append(candidates, filepath.Join(dir, envFile))
	}
	candidates = append(candidates, files...)

	var loaded []string
	seen := make(map[string]struct{})
	for _, f := range candidates {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if _, err = os.Stat(abs); err != nil {
			continue
		}
		if godotenv.Load(abs) == nil {
			loaded = append(loaded, abs)
		}
	}
	return loaded
}
