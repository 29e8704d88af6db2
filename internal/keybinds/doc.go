/*
Package keybinds maps decoded keystrokes to runtime actions.

# Overview

Bindings are grouped by context, one per kind of screen. A key is looked
up in the screen's own context first and then in the global context, so a
screen can shadow a global binding (the chat view turns up/down into
scrolling).

# Contexts

  - global: up, down, enter, esc
  - menu: main menu, category picker and file detail lists
  - files: the file picker, where printable keys feed the filter
  - confirm: yes/no dialogs
  - chat: message scrolling and compose

# Configuration

User overrides live in the "keys" section of the configuration file and
replace the default keys of the actions they name:

	keys:
	  menu:
	    back: "esc,q,h"
	  chat:
	    compose: "enter,c"

Check reports unknown actions as errors and flags risky but legal
overrides (rebinding esc globally, letters in the file picker) as warnings.
*/
package keybinds
