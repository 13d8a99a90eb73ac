// Package templates provides the solution template sets.
//
// A set is a directory holding a set.yaml manifest and the template files
// it names. Built-in sets (java, python, go, and the language-independent
// common set) are embedded in the binary; a templates directory configured
// in contestgen.json can override any of them by name.
//
// # Manifest
//
//	name: java
//	description: Java class per problem with JUnit 5 sample tests
//	gitignore: gitignore
//	shared:
//	  - path: build.gradle
//	    body: build.gradle.tmpl
//	problem:
//	  - path: src/main/java/{{content.contest}}/{{content.Name}}.java
//	    body: Main.java.tmpl
//	  - path: src/test/java/{{content.contest}}/{{content.Name}}Test.java
//	    body: MainTest.java.tmpl
//	    case: MainTest.case.tmpl
//
// Shared files are generated once per contest, problem files once per
// problem. Output paths are templates too. A case snippet is rendered once
// per sample with {{case.index}}, {{case.input}} and {{case.output}}; the
// results are concatenated into {{content.cases}} for the body.
//
// # Usage
//
//	set, err := templates.Get("java")
//	if err != nil {
//	    return err
//	}
//	files, err := set.PlanProblem(ctx, cases)
package templates
