// Command vrcache archives VRChat worlds from the local game cache. The
// daemon subcommand watches the cache directory and archives worlds as the
// game loads them; the remaining subcommands manage the resulting catalog.
package main
