/*
Package errors implements custom error interfaces for trustee.

Error declarations should be generic and cover broad range of cases. Each
returned error instance can wrap a generic error declaration to provide
more details. All errors of the same category are tested positive by the
root error's Is method, no matter how many times they were wrapped.
*/
package errors
