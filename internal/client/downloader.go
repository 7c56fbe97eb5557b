package client

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/omochice/frame-chat/pkg/protocol"
)

const imageTimeFormat = "2006-01-02_15-04-05.000000000"

// ErrUnsafeName is returned for a received file name that does not name a
// file inside the download directory.
var ErrUnsafeName = errors.New("unsafe file name")

// Downloader persists received files and images.
type Downloader struct {
	filesDir  string
	imagesDir string
	now       func() time.Time
	log       *slog.Logger
}

// NewDownloader creates a Downloader writing files under filesDir and
// images under imagesDir. Both are created on first use.
func NewDownloader(filesDir, imagesDir string, log *slog.Logger) *Downloader {
	return &Downloader{
		filesDir:  filesDir,
		imagesDir: imagesDir,
		now:       time.Now,
		log:       log,
	}
}

// Run downloads every message until the channel is closed. Announcements
// and outcomes are sent to out.
func (d *Downloader) Run(messages <-chan protocol.Message, out chan<- Result) {
	for msg := range messages {
		switch msg.Type {
		case protocol.MessageTypeFile:
			out <- Success("downloading %s", msg.Name)
		case protocol.MessageTypeImage:
			out <- Success("downloading an image (%s)", mimetype.Detect(msg.Content))
		default:
			d.log.Warn("Cannot download message", "message", msg.String())
			continue
		}

		line, err := d.Download(msg)
		if err != nil {
			out <- Failure(err)
			continue
		}
		out <- Success("%s", line)
	}
}

// Download stores one file or image message and returns the line to show.
func (d *Downloader) Download(msg protocol.Message) (string, error) {
	switch msg.Type {
	case protocol.MessageTypeFile:
		name, err := safeName(msg.Name)
		if err != nil {
			return "", err
		}
		if err := store(d.filesDir, name, msg.Content); err != nil {
			return "", err
		}
		d.log.Debug("File stored", "name", name, "size", len(msg.Content))
		return fmt.Sprintf("> %s downloaded", name), nil
	case protocol.MessageTypeImage:
		converted, err := toPNG(msg.Content)
		if err != nil {
			return "", err
		}
		name := d.now().Format(imageTimeFormat) + ".png"
		if err := store(d.imagesDir, name, converted); err != nil {
			return "", err
		}
		d.log.Debug("Image stored", "name", name, "size", len(converted))
		return fmt.Sprintf("image downloaded as %s", name), nil
	default:
		return "", fmt.Errorf("cannot download %s message", msg.Type)
	}
}

func safeName(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return base, nil
}

func toPNG(content []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (%s): %w", mimetype.Detect(content), err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to convert %s image to png: %w", format, err)
	}
	return buf.Bytes(), nil
}

func store(dir, name string, content []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}
