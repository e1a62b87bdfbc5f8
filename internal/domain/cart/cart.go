// Package cart names the fields of a cart item. Items are otherwise
// stored exactly as the client sent them.
package cart

// OwnerField holds the email of the customer the item was added for.
const OwnerField = "email"
