// Copyright 2014 The Gogs Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package charset converts header file content to UTF-8 before it reaches the lexer.
package charset

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// UTF8BOM is the utf-8 byte-order marker
var UTF8BOM = []byte{'\xef', '\xbb', '\xbf'}

// ToUTF8 converts content to UTF8 encoding.
// On failure the undecodable tail is appended unchanged, so the result is always usable.
func ToUTF8(content []byte) (string, error) {
	charsetLabel, err := DetectEncoding(content)
	if err != nil {
		return string(RemoveBOM(content)), err
	} else if charsetLabel == "UTF-8" {
		return string(RemoveBOM(content)), nil
	}

	encoding, _ := charset.Lookup(charsetLabel)
	if encoding == nil {
		return string(content), fmt.Errorf("unknown encoding: %s", charsetLabel)
	}

	result, n, err := transform.Bytes(encoding.NewDecoder(), content)
	if err != nil {
		result = append(result, content[n:]...)
	}
	return string(RemoveBOM(result)), err
}

// RemoveBOM removes a UTF-8 BOM from a []byte
func RemoveBOM(content []byte) []byte {
	if len(content) > 2 && bytes.Equal(content[0:3], UTF8BOM) {
		return content[3:]
	}
	return content
}

// DetectEncoding detect the encoding of content
func DetectEncoding(content []byte) (string, error) {
	if utf8.Valid(content) {
		return "UTF-8", nil
	}

	textDetector := chardet.NewTextDetector()
	detectContent := content
	if len(content) < 1024 {
		// chardet needs some volume to be confident
		times := 1024/len(content) + 1
		detectContent = bytes.Repeat(content, times)
	}

	result, err := textDetector.DetectBest(detectContent)
	if err != nil {
		return "", err
	}
	return result.Charset, nil
}
