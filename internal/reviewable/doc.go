// Package reviewable lets domain types opt in to receiving role-tagged
// reviews.
//
// A host type registers itself with RegisterType and declares the roles it
// accepts with Declare. Each declared role gets an Accessors value holding
// the collection getter, the class-level finders and the adder for that role.
// Accessors are built once per declaration and never synthesized at call time.
package reviewable
