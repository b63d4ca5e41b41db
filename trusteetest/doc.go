/*
Package trusteetest provides mocks and helpers for testing the trustee
state machines: random principals, a context backed authenticator, an
event recorder and a scriptable call target.
*/
package trusteetest
