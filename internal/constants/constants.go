package constants

const USER_AGENT = "saberwatch/0.1.0 (+https://github.com/Amund211/saberwatch)"
