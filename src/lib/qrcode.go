package lib

import (
	"fmt"
	"log"
	"os"
	"path"

	"github.com/yeqown/go-qrcode"
)

// GenerateQRCode writes a jpeg QR code of text into dir and returns its path.
func GenerateQRCode(dir, name, text string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	qrc, err := qrcode.New(text)
	if err != nil {
		return "", err
	}
	filepath := path.Join(dir, fmt.Sprintf("%s.jpeg", name))
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	return filepath, nil
}
