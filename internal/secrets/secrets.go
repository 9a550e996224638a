// Package secrets keeps the LLM API key out of the plain-text config file:
// a per-user 0600 file with AES-GCM obfuscation. Not a replacement for OS
// keychains.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const fileName = "keys.json"

type keyFile struct {
	Keys map[string]string `json:"keys"` // provider -> base64(ciphertext)
}

// Store saves a provider key.
func Store(provider, key string) error {
	if provider = norm(provider); provider == "" {
		return fmt.Errorf("provider required")
	}
	path, err := filePath()
	if err != nil {
		return err
	}
	kf, _ := load(path)
	if kf.Keys == nil {
		kf.Keys = map[string]string{}
	}
	ct, err := encrypt([]byte(key))
	if err != nil {
		return err
	}
	kf.Keys[provider] = base64.StdEncoding.EncodeToString(ct)
	return save(path, kf)
}

// Fetch returns the stored key for a provider, or empty string when absent.
func Fetch(provider string) (string, error) {
	if provider = norm(provider); provider == "" {
		return "", fmt.Errorf("provider required")
	}
	path, err := filePath()
	if err != nil {
		return "", err
	}
	kf, err := load(path)
	if err != nil {
		return "", err
	}
	enc, ok := kf.Keys[provider]
	if !ok {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// Delete removes a provider key.
func Delete(provider string) error {
	if provider = norm(provider); provider == "" {
		return fmt.Errorf("provider required")
	}
	path, err := filePath()
	if err != nil {
		return err
	}
	kf, err := load(path)
	if err != nil {
		return err
	}
	delete(kf.Keys, provider)
	return save(path, kf)
}

func filePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "konsole")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func load(path string) (keyFile, error) {
	var kf keyFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return keyFile{}, nil
		}
		return kf, err
	}
	if err := json.Unmarshal(data, &kf); err != nil {
		return kf, err
	}
	return kf, nil
}

func save(path string, kf keyFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	user := os.Getenv("USER")
	base := fmt.Sprintf("konsole-%s-%s", runtime.GOOS, user)
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
