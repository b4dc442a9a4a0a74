/*
 * Copyright 2026 Shelly Manager Contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package credential implements the credential-store and auth-state-cache
// boundary: a persistent, per-hardware-address credential store (encrypted
// at rest) and a TTL'd in-memory cache of "this address required auth last
// time" used by the RPC transport to decide whether to attach auth
// up front.
package credential

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"crypto/sha256"

	"github.com/shellyops/shelly-manager/pkg/models"
)

// ErrNotFound is returned by Get when no credential (and no wildcard) exists
// for the given key.
var ErrNotFound = errors.New("credential not found")

// Store is the out-of-band administrative boundary spec §6 describes: list,
// get (normalized-key or wildcard), set, delete. Implementations must be
// safe for concurrent use.
type Store interface {
	ListAll(ctx context.Context) ([]models.Credential, error)
	Get(ctx context.Context, key string) (*models.Credential, error)
	Set(ctx context.Context, key, username, password, lastSeenIP string) error
	Delete(ctx context.Context, key string) error
}

const (
	pbkdf2Iterations = 200_000
	keyLen           = chacha20poly1305.KeySize
)

// FileStore is a Store backed by a single encrypted JSON file on disk. The
// passphrase is stretched with PBKDF2-SHA256 into a ChaCha20-Poly1305 key;
// golang.org/x/crypto supplies both primitives, per SPEC_FULL's domain-stack
// wiring — there is no need to hand-roll AEAD framing.
type FileStore struct {
	path       string
	passphrase []byte

	mu    sync.Mutex
	cache map[string]models.Credential
}

// NewFileStore opens (or initializes) an encrypted credential file at path.
func NewFileStore(path string, passphrase []byte) (*FileStore, error) {
	s := &FileStore{path: path, passphrase: passphrase, cache: map[string]models.Credential{}}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading credential store: %w", err)
	}

	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	if len(raw) == 0 {
		return nil
	}

	plain, err := decrypt(raw, s.deriveKey())
	if err != nil {
		return fmt.Errorf("decrypting credential store: %w", err)
	}

	var creds map[string]models.Credential
	if err := json.Unmarshal(plain, &creds); err != nil {
		return fmt.Errorf("parsing credential store: %w", err)
	}

	s.cache = creds

	return nil
}

func (s *FileStore) persist() error {
	plain, err := json.Marshal(s.cache)
	if err != nil {
		return err
	}

	cipher, err := encrypt(plain, s.deriveKey())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(s.path, cipher, 0o600)
}

func (s *FileStore) deriveKey() []byte {
	// Salting with the fixed path keeps the derivation deterministic across
	// process restarts without a separate salt file; the passphrase itself
	// is the actual secret.
	return pbkdf2.Key(s.passphrase, []byte(s.path), pbkdf2Iterations, keyLen, sha256.New)
}

func (s *FileStore) ListAll(_ context.Context) ([]models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Credential, 0, len(s.cache))
	for _, c := range s.cache {
		out = append(out, c)
	}

	return out, nil
}

func (s *FileStore) Get(_ context.Context, key string) (*models.Credential, error) {
	normalized := models.NormalizeHardwareAddress(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[normalized]; ok {
		return &c, nil
	}

	if c, ok := s.cache[models.WildcardCredentialKey]; ok {
		return &c, nil
	}

	return nil, ErrNotFound
}

func (s *FileStore) Set(_ context.Context, key, username, password, lastSeenIP string) error {
	normalized := models.NormalizeHardwareAddress(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[normalized] = models.Credential{
		Key:        normalized,
		Username:   username,
		Password:   password,
		LastSeenIP: lastSeenIP,
	}

	return s.persist()
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	normalized := models.NormalizeHardwareAddress(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, normalized)

	return s.persist()
}

func encrypt(plain, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(cipherWithNonce, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	if len(cipherWithNonce) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, cipher := cipherWithNonce[:aead.NonceSize()], cipherWithNonce[aead.NonceSize():]

	return aead.Open(nil, nonce, cipher, nil)
}
