package services

import "errors"

var (
  ErrInvalidCredentials = errors.New("incorrect username or password")
  ErrUsernameTaken      = errors.New("username already registered")
  ErrEmailTaken         = errors.New("email already registered")
  // ErrSessionNotFound covers both true absence and foreign ownership, so
  // callers cannot probe for other users' sessions.
  ErrSessionNotFound    = errors.New("session not found")
  ErrKeyNotConfigured   = errors.New("Gemini API key not found. Please configure it in settings")
)
