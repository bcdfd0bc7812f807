// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"

	"golang.org/x/term"

	"github.com/ntruenc/ntru/kem"
	"github.com/ntruenc/ntru/keyfile"
	"github.com/ntruenc/ntru/stream"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of %s:
  %[1]s keygen [-i id] [-p cryptosystem] [-t time] [-m memory (KiB)] [-c comment]
  %[1]s encrypt [-i id | -passphrase] [-in input] [-out output]
  %[1]s decrypt [-i id] [-in input] [-out output]

Cryptosystems:
`, filepath.Base(os.Args[0]))
	for _, k := range kem.All() {
		fmt.Fprintf(os.Stderr, "  %s\n", k)
	}
	os.Exit(2)
}

func init() {
	flag.Usage = usage
}

func main() {
	flag.Parse()          // for -h usage
	if len(os.Args) < 2 { // one command is required
		usage()
	}
	var err error
	switch os.Args[1] {
	case "keygen":
		fs := new(keygenFlags).parse(os.Args[2:])
		err = keygen(fs)
	case "encrypt":
		fs := new(encryptFlags).parse(os.Args[2:])
		err = encrypt(fs)
	case "decrypt":
		fs := new(decryptFlags).parse(os.Args[2:])
		err = decrypt(fs)
	default:
		fmt.Fprintf(os.Stderr, "no command %q\n", os.Args[1])
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

type keygenFlags struct {
	identity     string
	cryptosystem string
	time         uint
	memory       uint
	force        bool
	comment      string
}

const (
	defaultID           = "id"
	defaultCryptosystem = "ntru-cca-743"
	defaultTime         = 1
	defaultMemory       = 64 * 1024
)

func (f *keygenFlags) parse(args []string) *keygenFlags {
	fs := flag.NewFlagSet("ss keygen", flag.ExitOnError)
	fs.StringVar(&f.identity, "i", defaultID, "identity name")
	fs.StringVar(&f.cryptosystem, "p", defaultCryptosystem, "cryptosystem (parameter set)")
	fs.UintVar(&f.time, "t", defaultTime, "Argon2id time")
	fs.UintVar(&f.memory, "m", defaultMemory, "Argon2id memory (KiB)")
	fs.BoolVar(&f.force, "f", false, "force Argon2id key derivation despite low parameters")
	fs.StringVar(&f.comment, "c", "", "comment")
	fs.Parse(args)
	return f
}

func promptPassphrase(prompt string) ([]byte, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	defer tty.Close()
	_, err = fmt.Fprint(tty, prompt)
	if err != nil {
		return nil, err
	}
	passphrase, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(tty)
	return passphrase, err
}

func appdir() string {
	u, err := user.Current()
	if err != nil {
		log.Printf("appdir: %v", err)
		return ""
	}
	if u.HomeDir == "" {
		log.Printf("appdir: user homedir is unknown")
		return ""
	}
	dir := filepath.Join(u.HomeDir, ".ss")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0700)
		if err != nil {
			log.Fatal(err)
		}
	}
	return dir
}

func keygen(fs *keygenFlags) (err error) {
	k, err := kem.Open(fs.cryptosystem)
	if err != nil {
		return err
	}
	id := fs.identity
	appdir := appdir()
	err = restrict(map[string]string{appdir: "rwc", "/dev/tty": "rw"})
	if err != nil {
		return err
	}
	pkFilename := filepath.Join(appdir, id+".public")
	skFilename := filepath.Join(appdir, id+".secret")
	if _, err := os.Stat(pkFilename); !os.IsNotExist(err) {
		return fmt.Errorf("%q keys already exist in %s", id, appdir)
	}
	if _, err := os.Stat(skFilename); !os.IsNotExist(err) {
		return fmt.Errorf("%q keys already exist in %s", id, appdir)
	}

	time := uint32(fs.time)
	memory := uint32(fs.memory)
	if memory < defaultMemory {
		log.Printf("warning: recommended Argon2id memory parameter is %d KiB (%d MiB)",
			defaultMemory, defaultMemory/1024)
		if !fs.force {
			return errors.New("choose stronger parameters, use defaults, or force with -f")
		}
	}

	passphrase, err := promptPassphrase("Secret key passphrase: ")
	if err != nil {
		return err
	}
	if len(passphrase) == 0 {
		return errors.New("empty passphrase")
	}

	defer func() {
		r := recover()
		if r != nil || err != nil {
			os.Remove(pkFilename)
			os.Remove(skFilename)
		}
		if r != nil {
			panic(r)
		}
	}()
	pkFile, err := os.OpenFile(pkFilename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer pkFile.Close()
	skFile, err := os.OpenFile(skFilename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer skFile.Close()

	kdfp := keyfile.NewArgon2idParams(time, memory)
	fp, err := keyfile.GenerateKeys(rand.Reader, k, pkFile, skFile, passphrase, kdfp, fs.comment)
	if err != nil {
		return err
	}
	log.Printf("create %v (%v)", pkFilename, k)
	log.Printf("create %v", skFilename)
	log.Printf("fingerprint: %s", fp)
	return nil
}

type encryptFlags struct {
	id         string
	passphrase bool
	time       uint
	memory     uint
	in         string
	out        string
}

func (f *encryptFlags) parse(args []string) *encryptFlags {
	fs := flag.NewFlagSet("ss encrypt", flag.ExitOnError)
	fs.StringVar(&f.id, "i", defaultID, "identity")
	fs.BoolVar(&f.passphrase, "passphrase", false, "encrypt with a passphrase instead of a public key")
	fs.UintVar(&f.time, "t", defaultTime, "Argon2id time (passphrase encryption)")
	fs.UintVar(&f.memory, "m", defaultMemory, "Argon2id memory in KiB (passphrase encryption)")
	fs.StringVar(&f.in, "in", "", "input file")
	fs.StringVar(&f.out, "out", "", "output file")
	fs.Parse(args)
	return f
}

func stdio(outFlag, inFlag string) (io.WriteCloser, io.ReadCloser, error) {
	var out io.WriteCloser = os.Stdout
	var in io.ReadCloser = os.Stdin
	var err error
	if inFlag != "" && inFlag != "-" {
		in, err = os.Open(inFlag)
		if err != nil {
			return nil, nil, err
		}
	}
	if outFlag != "" && outFlag != "-" {
		out, err = os.Create(outFlag)
		if err != nil {
			in.Close()
			return nil, nil, err
		}
	}
	return out, in, nil
}

func encrypt(fs *encryptFlags) error {
	appdir := appdir()
	pkFilename := filepath.Join(appdir, fs.id+".public")
	err := restrict(map[string]string{
		pkFilename: "r",
		"/dev/tty": "rw",
		fs.in:      "r",
		fs.out:     "rwc",
	})
	if err != nil {
		return err
	}

	var header, key []byte
	if fs.passphrase {
		passphrase, err := promptPassphrase("Encryption passphrase: ")
		if err != nil {
			return err
		}
		header, key, err = stream.PassphraseHeader(rand.Reader, passphrase,
			uint32(fs.time), uint32(fs.memory))
		if err != nil {
			return err
		}
	} else {
		if _, err := os.Stat(pkFilename); os.IsNotExist(err) {
			log.Printf("%s does not exist", pkFilename)
			return errors.New("use '-i' flag to choose another identity or generate default keys with 'ss keygen'")
		}
		pkFile, err := os.Open(pkFilename)
		if err != nil {
			return err
		}
		pk, err := keyfile.ReadPublicKey(pkFile)
		pkFile.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", pkFilename, err)
		}
		header, key, err = stream.Encapsulate(pk.KEM, pk.Key)
		if err != nil {
			return err
		}
	}

	out, in, err := stdio(fs.out, fs.in)
	if err != nil {
		return err
	}
	defer in.Close()
	err = stream.Encrypt(out, in, header, key)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

type decryptFlags struct {
	id  string
	in  string
	out string
}

func (f *decryptFlags) parse(args []string) *decryptFlags {
	fs := flag.NewFlagSet("ss decrypt", flag.ExitOnError)
	fs.StringVar(&f.id, "i", defaultID, "identity")
	fs.StringVar(&f.in, "in", "", "input file")
	fs.StringVar(&f.out, "out", "", "output file")
	fs.Parse(args)
	return f
}

func decrypt(fs *decryptFlags) error {
	appdir := appdir()
	skFilename := filepath.Join(appdir, fs.id+".secret")
	err := restrict(map[string]string{
		skFilename: "r",
		"/dev/tty": "rw",
		fs.in:      "r",
		fs.out:     "rwc",
	})
	if err != nil {
		return err
	}

	out, in, err := stdio(fs.out, fs.in)
	if err != nil {
		return err
	}
	defer in.Close()
	header, err := stream.ReadHeader(in)
	if err != nil {
		out.Close()
		return err
	}

	var key []byte
	switch {
	case header.KEM != nil:
		key, err = decapsulate(header, skFilename)
	default:
		var passphrase []byte
		passphrase, err = promptPassphrase("Encryption passphrase: ")
		if err == nil {
			key, err = stream.PassphraseKey(header, passphrase)
		}
	}
	if err != nil {
		out.Close()
		return err
	}

	err = stream.Decrypt(out, in, header.Bytes, key)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

func decapsulate(header *stream.Header, skFilename string) ([]byte, error) {
	skFile, err := os.Open(skFilename)
	if err != nil {
		return nil, err
	}
	defer skFile.Close()
	passphrase, err := promptPassphrase("Secret key passphrase: ")
	if err != nil {
		return nil, err
	}
	sk, _, err := keyfile.OpenSecretKey(skFile, passphrase)
	if err != nil {
		log.Printf("%s: %v", skFilename, err)
		return nil, errors.New("The secret keyfile cannot be opened.  " +
			"This may be due to keyfile tampering or an incorrect passphrase.")
	}
	defer sk.Wipe()
	if sk.KEM != header.KEM {
		return nil, fmt.Errorf("%s holds a %v key, but the message was encrypted with %v",
			skFilename, sk.KEM, header.KEM)
	}
	key, err := stream.Decapsulate(header, sk.Key)
	if err != nil {
		return nil, errors.New("the message key cannot be decrypted with this secret key")
	}
	return key, nil
}
