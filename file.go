package mockhttp

import (
	"fmt"
	"os"
)

// File is a file name. The contents of this file is loaded on demand
// by the following methods.
//
// Note that:
//
//	file := mockhttp.File("file.txt")
//	fmt.Printf("file: %s\n", file)
//
// prints the content of file "file.txt" as String() method is used.
//
// To print the file name, and not its content, simply do:
//
//	file := mockhttp.File("file.txt")
//	fmt.Printf("file: %s\n", string(file))
//
// As it implements json.Marshaler, a File can be given to
// ResponseBuilder.WithBody or RuleBuilder.ThatHasBody to use the JSON
// it contains.
type File string

// MarshalJSON implements json.Marshaler.
func (f File) MarshalJSON() ([]byte, error) {
	return f.bytes()
}

func (f File) bytes() ([]byte, error) {
	return os.ReadFile(string(f))
}

// Bytes returns the content of file as a []byte. If an error occurs
// during the opening or reading of the file, it panics.
//
// Useful to be used in conjunction with ResponseBuilder.WithContent or
// RuleBuilder.ThatHasContent as in:
//
//	session.Expect(http.MethodGet, "https://api.test/logo").
//		Responds().WithContent(mockhttp.File("logo.png").Bytes())
func (f File) Bytes() []byte {
	b, err := f.bytes()
	if err != nil {
		panic(fmt.Sprintf("Cannot read %s: %s", string(f), err))
	}
	return b
}

// String returns the content of file as a string. If an error occurs
// during the opening or reading of the file, it panics.
func (f File) String() string {
	return string(f.Bytes())
}
