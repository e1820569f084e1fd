package encryption

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	e, err := NewEncryptor(key.Encode())
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}

	plaintext := "sk-test-api-key-value"
	token, err := e.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if token == plaintext {
		t.Error("token equals plaintext")
	}

	got, err := e.Decrypt(token)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != plaintext {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	k1, _ := GenerateKey()
	k2, _ := GenerateKey()

	e1, _ := NewEncryptor(k1.Encode())
	e2, _ := NewEncryptor(k2.Encode())

	token, err := e1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if _, err := e2.Decrypt(token); err == nil {
		t.Error("Decrypt() with a different key succeeded")
	}
}

func TestNewEncryptorRejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "   ", "not-a-valid-key"} {
		if _, err := NewEncryptor(key); err == nil {
			t.Errorf("NewEncryptor(%q) succeeded, want error", key)
		}
	}
}
