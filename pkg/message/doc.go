// Package message defines the messages exchanged between MeshSync clients and
// servers, along with their wire encoding.
package message
