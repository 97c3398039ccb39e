// Command vaultctl is the operator tool for master key management.
//
//	vaultctl keygen            print a fresh random master key as hex
//	vaultctl derive [-salt S]  derive a master key from a passphrase
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/secureledger/vault/internal/buildinfo"
	"github.com/secureledger/vault/internal/common"
	"github.com/secureledger/vault/internal/cryptox"
	"golang.org/x/term"
)

const saltSize = 16

func main() {

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "keygen":
		runKeygen()
	case "derive":
		runDerive(os.Args[2:])
	case "version":
		buildinfo.PrintBuildData(os.Stdout)
	default:
		usage()
		os.Exit(2)
	}

}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vaultctl <keygen|derive|version>")
}

func runKeygen() {
	key := common.GenerateRandByteArray(cryptox.KeySize)
	fmt.Println(hex.EncodeToString(key))
}

// runDerive reads a passphrase from the terminal and stretches it into a
// master key. Without -salt a random salt is generated and printed so the
// same key can be derived again later.
func runDerive(args []string) {

	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	saltHex := fs.String("salt", "", "hex-encoded salt from a previous run")
	fs.Parse(args)

	var salt []byte
	if *saltHex != "" {
		var err error
		salt, err = hex.DecodeString(*saltHex)
		if err != nil {
			log.Fatalf("invalid salt: %v", err)
		}
	} else {
		salt = common.GenerateRandByteArray(saltSize)
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("error reading passphrase: %v", err)
	}
	if len(passphrase) == 0 {
		log.Fatal("empty passphrase")
	}

	key := cryptox.DeriveMasterKey(passphrase, salt)

	fmt.Printf("salt: %s\n", hex.EncodeToString(salt))
	fmt.Printf("key:  %s\n", hex.EncodeToString(key))
}
