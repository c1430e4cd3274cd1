// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Command libraptorq-jni builds the codec as a JNI library backing the
// raptorq.JniRaptorQ class:
//
//	CGO_CFLAGS="-I$JAVA_HOME/include -I$JAVA_HOME/include/linux" \
//	    go build -tags jni -buildmode=c-shared -o libraptorq_jni.so ./cmd/libraptorq-jni
//
// Without the jni tag the command is empty.
package main

func main() {}
