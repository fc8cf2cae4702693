package bot

const welcomeMessage = `🔔 *IDX Disclosure Bot*

Selamat datang! Bot ini akan memberitahu Anda tentang *semua* keterbukaan informasi terbaru dari Bursa Efek Indonesia.

✅ Anda sekarang *berlangganan* notifikasi!

*Perintah yang tersedia:*

/latest - Tampilkan 5 disclosure terakhir
/stop - Berhenti berlangganan notifikasi
/start - Aktifkan kembali notifikasi
/stats - Lihat statistik bot
/help - Bantuan

Setiap ada disclosure baru dari emiten manapun di IDX, Anda akan langsung mendapat notifikasi! 🚀`

const farewellMessage = `❌ Anda telah berhenti berlangganan.

Gunakan /start untuk berlangganan kembali.`

const helpMessage = `📖 *Bantuan IDX Disclosure Bot*

*Perintah:*
/start - Berlangganan notifikasi
/stop - Berhenti berlangganan
/latest - Lihat 5 disclosure terakhir
/stats - Lihat statistik bot
/help - Bantuan ini

*Kategori Disclosure:*
• 📊 Financial Report - Laporan keuangan
• 📈 Corporate Action - RUPS, dividen, stock split
• 💰 Rights Issue - HMETD
• ℹ️ Material Information - Info material
• 👥 Ownership - Perubahan kepemilikan saham
• 🤝 Acquisition - Akuisisi, merger
• 📄 Other - Lainnya

*Cara Kerja:*
Bot memeriksa website IDX secara berkala. Saat ada disclosure baru dari emiten manapun, Anda langsung mendapat push notification!

Sederhana, efisien, dan real-time! 🚀`
