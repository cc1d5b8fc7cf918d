// Package pymkore implements the build engine of pymk. A [Project] is a set
// of named goals ([Goal]) that are connected by actions ([Action]). Each
// action turns the artefacts of its premise goals into the artefacts of its
// result goals by running an [Operation], typically an external development
// tool. The [Builder] brings goals up to date, [Clean] removes removable
// artefacts.
//
// pymkore is deliberately tool-agnostic. Everything specific to Python
// projects lives in the pymk root package.
package pymkore
