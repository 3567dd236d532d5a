// Package artifact addresses jars and POMs in a maven-layout repository.
//
// The repository is a plain directory tree:
//
//	<root>/<group with / for .>/<name>/<version>/<name>-<version>[-<classifier>].<ext>
//
// Artifacts missing locally are installed from remote repositories through a
// fetch.Fetcher. POM files are read and written with etree.
package artifact
