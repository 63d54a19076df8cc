package tokenstore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	fileMode  = 0o600
	nonceSize = 24
	keyInfo   = "ecolink token store v1"
	encPrefix = "enc:"
)

// File keeps tokens in a single JSON document on disk. When a secret is supplied
// every value is sealed with secretbox under a key derived from it.
type File struct {
	mu   sync.Mutex
	path string
	key  *[32]byte
}

var _ Store = (*File)(nil)

// NewFile creates a file backed store at path. secret may be empty.
func NewFile(path, secret string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("[tokenstore NewFile] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("[tokenstore NewFile] create folder: %w", err)
	}

	f := &File{path: path}
	if secret != "" {
		key, err := deriveKey(secret)
		if err != nil {
			return nil, fmt.Errorf("[tokenstore NewFile] derive key: %w", err)
		}
		f.key = key
	}
	return f, nil
}

func (f *File) Get(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tokens, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := tokens[key]
	if !ok {
		return "", ErrNotFound
	}
	return f.open(value)
}

func (f *File) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tokens, err := f.load()
	if err != nil {
		return err
	}
	sealed, err := f.seal(value)
	if err != nil {
		return err
	}
	tokens[key] = sealed
	return f.save(tokens)
}

func (f *File) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tokens, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := tokens[key]; !ok {
		return nil
	}
	delete(tokens, key)
	return f.save(tokens)
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	tokens := make(map[string]string)
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return tokens, nil
}

// save writes to a temp file and renames it over the original
func (f *File) save(tokens map[string]string) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *File) seal(value string) (string, error) {
	if f.key == nil {
		return value, nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, f.key)
	return encPrefix + base64.RawURLEncoding.EncodeToString(box), nil
}

func (f *File) open(value string) (string, error) {
	if f.key == nil {
		return value, nil
	}
	if len(value) < len(encPrefix) || value[:len(encPrefix)] != encPrefix {
		return "", fmt.Errorf("stored token is not encrypted")
	}
	box, err := base64.RawURLEncoding.DecodeString(value[len(encPrefix):])
	if err != nil || len(box) < nonceSize {
		return "", fmt.Errorf("stored token is malformed")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, f.key)
	if !ok {
		return "", fmt.Errorf("stored token failed authentication")
	}
	return string(plain), nil
}

func deriveKey(secret string) (*[32]byte, error) {
	var key [32]byte
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, err
	}
	return &key, nil
}
