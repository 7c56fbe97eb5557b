package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/omochice/frame-chat/pkg/protocol"
)

// CommandType represents the kind of a command typed by the user
type CommandType int

const (
	CommandText CommandType = iota
	CommandFile
	CommandImage
	CommandQuit
)

// String returns the string representation of CommandType
func (ct CommandType) String() string {
	switch ct {
	case CommandText:
		return "TEXT"
	case CommandFile:
		return "FILE"
	case CommandImage:
		return "IMAGE"
	case CommandQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

const (
	prefixQuit  = ".quit"
	prefixFile  = ".file"
	prefixImage = ".image"
)

var (
	// ErrQuitNotSendable is returned when a Quit command is converted to a
	// message.
	ErrQuitNotSendable = errors.New("quit is not a sendable command")
	// ErrMissingPath is returned for a file or image command without a path.
	ErrMissingPath = errors.New("missing path")
)

// Command is a line typed by the user. Text holds the literal line of a
// CommandText; Path holds the referenced file of CommandFile and
// CommandImage.
type Command struct {
	Type CommandType
	Text string
	Path string
}

// ParseCommand turns one logical line into a Command. Control commands
// are matched by prefix; any other line is literal text.
func ParseCommand(line string) (Command, error) {
	switch {
	case strings.HasPrefix(line, prefixQuit):
		return Command{Type: CommandQuit}, nil
	case strings.HasPrefix(line, prefixFile):
		return pathCommand(CommandFile, prefixFile, line)
	case strings.HasPrefix(line, prefixImage):
		return pathCommand(CommandImage, prefixImage, line)
	default:
		return Command{Type: CommandText, Text: line}, nil
	}
}

func pathCommand(ct CommandType, prefix, line string) (Command, error) {
	path := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if path == "" {
		return Command{}, fmt.Errorf("%s: %w", prefix, ErrMissingPath)
	}
	return Command{Type: ct, Path: path}, nil
}

// DisplayName returns the final path component of a file or image command.
func (c Command) DisplayName() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Base(c.Path)
}

// ToMessage materializes the command. File and image commands read the
// referenced path fully into memory.
func (c Command) ToMessage() (protocol.Message, error) {
	switch c.Type {
	case CommandText:
		return protocol.NewText(c.Text), nil
	case CommandFile:
		content, err := os.ReadFile(c.Path)
		if err != nil {
			return protocol.Message{}, fmt.Errorf("failed to read file: %w", err)
		}
		return protocol.NewFile(c.DisplayName(), content), nil
	case CommandImage:
		content, err := os.ReadFile(c.Path)
		if err != nil {
			return protocol.Message{}, fmt.Errorf("failed to read image: %w", err)
		}
		return protocol.NewImage(content), nil
	case CommandQuit:
		return protocol.Message{}, ErrQuitNotSendable
	default:
		return protocol.Message{}, fmt.Errorf("unknown command type %d", c.Type)
	}
}
