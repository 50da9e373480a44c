// Package profile holds the two customer-profile shapes the gateway speaks
// and the adapter that translates between them.
//
// # Shapes
//
// LegacyProfile is what callers of the public API send and receive. The
// customer's name travels as a single fullName field.
//
// ModernProfile is what the modern customer system stores. The name is split
// into firstName and lastName, and the contact fields carry different names.
//
// Every field of both shapes is optional. Absent values are nil pointers and
// are written to JSON as null.
//
// # Translation
//
//	legacy.customerId   <-> modern.id
//	legacy.fullName     <-> modern.firstName + " " + modern.lastName
//	legacy.email        <-> modern.emailAddress
//	legacy.phoneNumber  <-> modern.contactNumber
//
// The name is split at the first space only, so "Mary Ann Smith" becomes
// firstName "Mary" and lastName "Ann Smith". Joining always inserts one
// space, which means a missing first or last name leaves a leading or
// trailing space in fullName.
//
// # Backend port
//
// ModernBackend is the port through which the application layer reaches the
// modern system. Implementations live in infrastructure/modern.
package profile
