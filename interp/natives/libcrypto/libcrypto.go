// Copyright © 2024 The Qanun authors

// Package libcrypto implements the Crypto module.
package libcrypto

import (
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives/internal/libutil"
)

// DefaultModuleName is the name programs import the module by.
const DefaultModuleName = "Crypto"

// LoadPackage registers the Crypto module with it.
func LoadPackage(it *interp.Interpreter) error {
	it.RegisterModule(NewModule())
	return nil
}

// NewModule returns a fresh Crypto module value.
func NewModule() *interp.Module {
	return libutil.Module(DefaultModuleName,
		`Hashing and random identifiers.`,
		builtins)
}

var builtins = []*interp.Native{
	libutil.FunctionDoc("sha", libutil.Params("text"), BuiltinSHA,
		`Returns the SHA3-256 digest of text as a lowercase hex string.
		Values other than strings are hashed as they would print.`),
	libutil.FunctionDoc("uuid", libutil.Params(), BuiltinUUID,
		`Returns a random (version 4) UUID string.`),
}

func BuiltinSHA(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	sum := sha3.Sum256([]byte(interp.Stringify(args[0])))
	return interp.String(hex.EncodeToString(sum[:])), nil
}

func BuiltinUUID(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return interp.String(id.String()), nil
}
