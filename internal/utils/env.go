package utils

import (
  "fmt"
  "os"
  "strconv"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
)

func GetEnv(key, defaultVal string, log *logger.Logger) string {
  if log != nil {
    log = log.With("env_var", key)
  }
  val, ok := os.LookupEnv(key)
  if !ok {
    if log != nil {
      log.Debug("Environment variable not found, using default value", "defaultValue", defaultVal)
    }
    return defaultVal
  }
  return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
  if log != nil {
    log = log.With("env_var", key)
  }
  valStr, ok := os.LookupEnv(key)
  if !ok {
    if log != nil {
      log.Debug("Environment variable not found, using default int", "defaultVal", defaultVal)
    }
    return defaultVal
  }
  i, err := strconv.Atoi(valStr)
  if err != nil {
    if log != nil {
      log.Debug("Environment variable could not be parsed as int, using default", "providedVal", valStr, "defaultVal", defaultVal, "error", err)
    }
    return defaultVal
  }
  return i
}

// MustGetEnv returns the value of a required environment variable. There is
// deliberately no generated fallback here: the encryption key in particular
// must outlive the process, and an ephemeral default would strand every
// stored ciphertext on restart.
func MustGetEnv(key string) (string, error) {
  val, ok := os.LookupEnv(key)
  if !ok || val == "" {
    return "", fmt.Errorf("required environment variable %s is not set", key)
  }
  return val, nil
}
