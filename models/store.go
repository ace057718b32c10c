package models

import "maps"

// Store identifies the payment platform a receipt was issued by.
type Store int

const (
	StoreTest       Store = 0
	StoreApple      Store = 1
	StoreGoogle     Store = 2
	StoreAppleTest  Store = 91
	StoreGoogleTest Store = 92
)

var storeNames = map[int]string{
	0:  "TEST",
	1:  "APPLE",
	2:  "GOOGLE",
	91: "APPLE_TEST",
	92: "GOOGLE_TEST",
}

// StoreMap returns a copy of the store id -> platform name table.
func StoreMap() map[int]string {
	return maps.Clone(storeNames)
}

func LookupStore(code int) (string, bool) {
	name, ok := storeNames[code]
	return name, ok
}

func (s Store) String() string {
	if name, ok := storeNames[int(s)]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Store) IsValid() bool {
	_, ok := storeNames[int(s)]
	return ok
}

// IsSandbox reports whether receipts from this store skip production validation.
func (s Store) IsSandbox() bool {
	return s == StoreTest || s == StoreAppleTest || s == StoreGoogleTest
}
