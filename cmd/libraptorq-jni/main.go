// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

//go:build jni

package main

/*
#include <stdlib.h>
#include "jni_helpers.h"
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"go.uber.org/zap"

	"storj.io/raptorq/private/logenv"
	"storj.io/raptorq/private/managed"
)

func init() {
	log, err := logenv.Logger()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "libraptorq-jni:", err)
		return
	}
	if log != nil {
		managed.SetLogger(log)
	}
}

//export Java_raptorq_JniRaptorQ_encoderWithDefaults
func Java_raptorq_JniRaptorQ_encoderWithDefaults(env *C.JNIEnv, _ C.jclass, data C.jbyteArray, offset, length, mtu C.jint) C.jlong {
	window, ok := readWindow(env, data, offset, length)
	if !ok {
		return 0
	}
	return C.jlong(managed.Default.EncoderWithDefaults(window, 0, int32(len(window)), int32(mtu)))
}

//export Java_raptorq_JniRaptorQ_encoderEncode
func Java_raptorq_JniRaptorQ_encoderEncode(env *C.JNIEnv, _ C.jclass, encoder C.jlong, repair C.jint) C.jobjectArray {
	packets := managed.Default.EncoderEncode(int64(encoder), int32(repair))
	if packets == nil {
		return nil
	}

	arrays := C.raptorq_jni_new_array_of_byte_arrays(env, C.jsize(len(packets)))
	if arrays == nil {
		managed.Logger().Error("allocating packet array failed", zap.Int("count", len(packets)))
		return nil
	}
	for i, packet := range packets {
		array := C.raptorq_jni_new_byte_array(env, bytePointer(packet), C.jsize(len(packet)))
		if array == nil || C.raptorq_jni_set_element(env, arrays, C.jsize(i), C.jobject(array)) == C.JNI_FALSE {
			managed.Logger().Error("storing packet failed", zap.Int("index", i))
			return nil
		}
	}
	return arrays
}

//export Java_raptorq_JniRaptorQ_encoderFree
func Java_raptorq_JniRaptorQ_encoderFree(_ *C.JNIEnv, _ C.jclass, encoder C.jlong) {
	managed.Default.EncoderFree(int64(encoder))
}

//export Java_raptorq_JniRaptorQ_decoderWithDefaults
func Java_raptorq_JniRaptorQ_decoderWithDefaults(_ *C.JNIEnv, _ C.jclass, transferLength C.jlong, mtu C.jint) C.jlong {
	return C.jlong(managed.Default.DecoderWithDefaults(int64(transferLength), int32(mtu)))
}

//export Java_raptorq_JniRaptorQ_decoderDecode
func Java_raptorq_JniRaptorQ_decoderDecode(env *C.JNIEnv, _ C.jclass, decoder C.jlong, packet C.jbyteArray, offset, length C.jint, output C.jbyteArray, outputOffset C.jint) C.jboolean {
	window, ok := readWindow(env, packet, offset, length)
	if !ok {
		return C.JNI_FALSE
	}

	payload, ok := managed.Default.DecoderDecodeCopy(int64(decoder), window, 0, int32(len(window)))
	if !ok {
		return C.JNI_FALSE
	}

	size := int64(C.raptorq_jni_array_length(env, output))
	if outputOffset < 0 || int64(outputOffset)+int64(len(payload)) > size {
		managed.Logger().Warn("decoded payload does not fit output",
			zap.Int("payload", len(payload)), zap.Int64("output", size), zap.Int32("offset", int32(outputOffset)))
		return C.JNI_FALSE
	}
	if len(payload) == 0 {
		return C.JNI_TRUE
	}
	if C.raptorq_jni_set_region(env, output, C.jsize(outputOffset), C.jsize(len(payload)), bytePointer(payload)) == C.JNI_FALSE {
		return C.JNI_FALSE
	}
	return C.JNI_TRUE
}

//export Java_raptorq_JniRaptorQ_decoderFree
func Java_raptorq_JniRaptorQ_decoderFree(_ *C.JNIEnv, _ C.jclass, decoder C.jlong) {
	managed.Default.DecoderFree(int64(decoder))
}

// readWindow copies array[offset:offset+length] out of the JVM.
func readWindow(env *C.JNIEnv, array C.jbyteArray, offset, length C.jint) ([]byte, bool) {
	size := int64(C.raptorq_jni_array_length(env, array))
	if offset < 0 || length < 0 || int64(offset)+int64(length) > size {
		managed.Logger().Debug("invalid array window",
			zap.Int64("len", size), zap.Int32("offset", int32(offset)), zap.Int32("length", int32(length)))
		return nil, false
	}

	window := make([]byte, length)
	if length == 0 {
		return window, true
	}
	if C.raptorq_jni_get_region(env, array, C.jsize(offset), C.jsize(length), (*C.jbyte)(unsafe.Pointer(&window[0]))) == C.JNI_FALSE {
		return nil, false
	}
	return window, true
}

func bytePointer(data []byte) *C.jbyte {
	if len(data) == 0 {
		return nil
	}
	return (*C.jbyte)(unsafe.Pointer(&data[0]))
}
