// Command mscx reads and edits the metadata and style of MuseScore files and
// renames them from their metadata.
//
// Every editing command accepts files and directories; directories are
// searched recursively for .mscx and .mscz files. Global flags control the
// shared batch behavior: --catch-errors keeps going after a failing file,
// --backup writes a _bak copy first, --dry-run never saves, --diff prints a
// unified diff of every change and --render re-saves through MuseScore.
package main
