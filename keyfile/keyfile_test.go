// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package keyfile

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/ntruenc/ntru/kem"
)

var testKDF = NewArgon2idParams(1, 64)

func TestGenerateOpen(t *testing.T) {
	k, err := kem.Open("ntru-cca-443")
	if err != nil {
		t.Fatal(err)
	}
	passphrase := []byte("correct horse")

	var pkbuf, skbuf bytes.Buffer
	fp, err := GenerateKeys(rand.Reader, k, &pkbuf, &skbuf, passphrase, testKDF, "test key")
	if err != nil {
		t.Fatalf("GenerateKeys: %v", err)
	}
	if !strings.HasPrefix(fp, "blake2b-256:") {
		t.Fatalf("unexpected fingerprint %q", fp)
	}

	pk, err := ReadPublicKey(bytes.NewReader(pkbuf.Bytes()))
	if err != nil {
		t.Fatalf("ReadPublicKey: %v", err)
	}
	if pk.KEM != k || pk.Fingerprint != fp {
		t.Fatalf("public key is %v %s", pk.KEM, pk.Fingerprint)
	}

	sk, kf, err := OpenSecretKey(bytes.NewReader(skbuf.Bytes()), passphrase)
	if err != nil {
		t.Fatalf("OpenSecretKey: %v", err)
	}
	defer sk.Wipe()
	if kf.Comment != "test key" || kf.Fingerprint != fp {
		t.Fatalf("keyfields %+v", kf)
	}
	if len(sk.Key) != kem.SeedSize {
		t.Fatalf("secret is %d bytes", len(sk.Key))
	}

	ct, key1, err := pk.KEM.Encapsulate(pk.Key)
	if err != nil {
		t.Fatal(err)
	}
	key2, err := sk.KEM.Decapsulate(sk.Key, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(key1, key2) {
		t.Fatal("keyfile keys derive different shared keys")
	}

	_, _, err = OpenSecretKey(bytes.NewReader(skbuf.Bytes()), []byte("wrong"))
	if err == nil {
		t.Fatal("opened secret key with the wrong passphrase")
	}
}

func TestReencrypt(t *testing.T) {
	k := kem.SNTRUP4591761()
	var pkbuf, skbuf bytes.Buffer
	fp, err := GenerateKeys(rand.Reader, k, &pkbuf, &skbuf, []byte("old"), testKDF, "")
	if err != nil {
		t.Fatal(err)
	}
	sk, kf, err := OpenSecretKey(&skbuf, []byte("old"))
	if err != nil {
		t.Fatal(err)
	}

	var rekeyed bytes.Buffer
	err = EncryptSecretKey(rand.Reader, &rekeyed, sk, []byte("new"), testKDF, kf)
	if err != nil {
		t.Fatal(err)
	}
	sk2, kf2, err := OpenSecretKey(&rekeyed, []byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sk.Key, sk2.Key) || sk2.KEM != k || kf2.Fingerprint != fp {
		t.Fatal("reencrypted secret key differs")
	}
}

func TestTamperedPublicKey(t *testing.T) {
	k := kem.X25519NTRU743()
	var pkbuf, skbuf bytes.Buffer
	_, err := GenerateKeys(rand.Reader, k, &pkbuf, &skbuf, []byte("p"), testKDF, "")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(pkbuf.String(), "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "fingerprint: ") {
			lines[i] = "fingerprint: blake2b-256:AAAA"
		}
	}
	_, err = ReadPublicKey(strings.NewReader(strings.Join(lines, "\n")))
	if err == nil {
		t.Fatal("accepted public key with mismatched fingerprint")
	}

	_, err = ReadPublicKey(strings.NewReader(strings.Replace(pkbuf.String(),
		"cryptosystem: "+k.String(), "cryptosystem: rsa", 1)))
	if err == nil {
		t.Fatal("accepted unknown cryptosystem")
	}
}
