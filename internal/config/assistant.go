package config

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultInstructions is used when the instructions file cannot be read.
const DefaultInstructions = "You are a helpful assistant."

var (
	instructionsMu     sync.RWMutex
	instructions       string
	instructionsLoaded bool
)

// GetAssistantName returns the display name used when creating the remote assistant.
func GetAssistantName() string {
	return GetEnvOrDefault("ASSISTANT_NAME", "Personal Trainer")
}

// GetAssistantModel returns the model identifier used when creating the remote assistant.
func GetAssistantModel() string {
	return GetEnvOrDefault("ASSISTANT_MODEL", "gpt-3.5-turbo")
}

// GetInstructionsPath returns the path of the system instructions file.
func GetInstructionsPath() string {
	return GetEnvOrDefault("INSTRUCTIONS_PATH", "instructions.txt")
}

// GetInstructions returns the system instructions string. The instructions
// file is read once; a missing file degrades to DefaultInstructions and is
// logged, never fatal.
func GetInstructions() string {
	instructionsMu.RLock()
	if instructionsLoaded {
		defer instructionsMu.RUnlock()
		return instructions
	}
	instructionsMu.RUnlock()

	instructionsMu.Lock()
	defer instructionsMu.Unlock()
	if instructionsLoaded {
		return instructions
	}

	instructions = readInstructions(GetInstructionsPath())
	instructionsLoaded = true
	return instructions
}

func readInstructions(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).
			Msgf("Instructions file not found, defaulting to %q", DefaultInstructions)
		return DefaultInstructions
	}
	log.Info().Str("path", path).Msg("Instructions file loaded successfully")
	return string(data)
}

// SetInstructions temporarily replaces the instructions string and returns a
// function to restore the previous state. This is primarily used for testing.
func SetInstructions(s string) func() {
	instructionsMu.Lock()
	previous, previousLoaded := instructions, instructionsLoaded
	instructions = s
	instructionsLoaded = true
	instructionsMu.Unlock()

	return func() {
		instructionsMu.Lock()
		instructions, instructionsLoaded = previous, previousLoaded
		instructionsMu.Unlock()
	}
}
